package model

// RawMessage describes one archive message for naming, logging and
// duplicate detection. The message bytes themselves travel separately
// so the pipeline never works on a copy.
type RawMessage struct {
	ID   string
	Hash string
	Size int64
}
