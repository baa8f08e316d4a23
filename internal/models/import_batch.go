package models

// ImportBatch accumulates the per-import counters reported back to the
// caller. It is not persisted; the durable copy lives on ImportJob.
type ImportBatch struct {
	Parsed       int `json:"parsed"`
	Mapped       int `json:"mapped"`
	Dropped      int `json:"dropped"`
	Deduplicated int `json:"deduplicated"`
	Inserted     int `json:"inserted"`
}

// Add folds another batch's counters into this one.
func (b *ImportBatch) Add(other ImportBatch) {
	b.Parsed += other.Parsed
	b.Mapped += other.Mapped
	b.Dropped += other.Dropped
	b.Deduplicated += other.Deduplicated
	b.Inserted += other.Inserted
}
