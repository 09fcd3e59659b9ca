package dns

import (
	"fmt"
	"testing"
)

func TestMatchesA(t *testing.T) {
	tests := []struct {
		record Record
		name   string
		want   bool
	}{
		{Record{Type: "A", Name: "www"}, "www", true},
		{Record{Type: "A", Name: "@"}, "@", true},
		{Record{Type: "AAAA", Name: "www"}, "www", false},
		{Record{Type: "CNAME", Name: "www"}, "www", false},
		{Record{Type: "A", Name: "api"}, "www", false},
		{Record{Type: "A", Name: "*"}, "*", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s vs %s", tt.record.Type, tt.record.Name, tt.name), func(t *testing.T) {
			if got := MatchesA(tt.record, tt.name); got != tt.want {
				t.Errorf("MatchesA(%+v, %q): got %v, want %v", tt.record, tt.name, got, tt.want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		total int
		size  int
		want  []int
	}{
		{0, 50, nil},
		{1, 50, []int{1}},
		{50, 50, []int{50}},
		{51, 50, []int{50, 1}},
		{120, 50, []int{50, 50, 20}},
		{10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d by %d", tt.total, tt.size), func(t *testing.T) {
			records := make([]Record, tt.total)
			for i := range records {
				records[i] = NewA("www", fmt.Sprintf("10.0.0.%d", i), 300)
			}

			chunks := Chunk(records, tt.size)
			if len(chunks) != len(tt.want) {
				t.Fatalf("expected %d chunks, got %d", len(tt.want), len(chunks))
			}
			seen := 0
			for i, c := range chunks {
				if len(c) != tt.want[i] {
					t.Errorf("chunk %d: expected %d items, got %d", i, tt.want[i], len(c))
				}
				if c[0].Address != records[seen].Address {
					t.Errorf("chunk %d: expected to start at %q, got %q", i, records[seen].Address, c[0].Address)
				}
				seen += len(c)
			}
		})
	}
}

func TestNewA(t *testing.T) {
	r := NewA("www", "1.2.3.4", 600)
	if r.Type != RecordTypeA {
		t.Errorf("expected type %q, got %q", RecordTypeA, r.Type)
	}
	if r.Name != "www" || r.Address != "1.2.3.4" || r.TTL != 600 {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.ID != "" {
		t.Errorf("expected empty ID for new record, got %q", r.ID)
	}
}
