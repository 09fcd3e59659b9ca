package dns

import (
	"context"
	"encoding/json"
)

// RecordTypeA is the only record type this tool writes.
const RecordTypeA = "A"

// Record represents a DNS record as stored by the provider.
//
// A record decoded from a provider response keeps its original JSON and
// marshals back to it unchanged, so fields not modelled here survive a
// list-then-delete round-trip.
type Record struct {
	ID      string `json:"id,omitempty"` // provider-assigned, empty for new records
	Type    string `json:"type"`         // "A", "AAAA", "CNAME", ...
	Name    string `json:"name"`         // subdomain label, e.g. "@", "www", "*"
	Address string `json:"address,omitempty"`
	TTL     int    `json:"ttl"`

	raw json.RawMessage
}

// record has Record's fields without its JSON methods.
type record Record

// NewA builds an A record for the given subdomain label.
func NewA(name, address string, ttl int) Record {
	return Record{Type: RecordTypeA, Name: name, Address: address, TTL: ttl}
}

// Raw returns the JSON the record was decoded from, or nil for records built
// locally.
func (r Record) Raw() json.RawMessage {
	return r.raw
}

// MarshalJSON returns the original JSON for decoded records and the modelled
// fields otherwise.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(record(r))
}

// UnmarshalJSON decodes the modelled fields and keeps a copy of data.
func (r *Record) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = Record(rec)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Client is the interface the reconciler uses to talk to a DNS provider.
// It is scoped to a single domain.
type Client interface {
	// List returns every record of the domain. On failure it returns the
	// records fetched so far together with the error.
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, records []Record) error
	Add(ctx context.Context, records []Record) error
}
