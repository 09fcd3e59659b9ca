package dns

// MatchesA reports whether r is an A record for the given subdomain label.
func MatchesA(r Record, name string) bool {
	return r.Type == RecordTypeA && r.Name == name
}

// Chunk splits records into consecutive groups of at most size items.
// e.g. 120 records with size 50 → [50, 50, 20]
func Chunk(records []Record, size int) [][]Record {
	if size <= 0 || len(records) == 0 {
		return nil
	}
	chunks := make([][]Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
