package services

import (
	"statement-ingest/internal/models"
)

// deduplicator implements DeduplicatorInterface. Not safe for concurrent
// use: each import invocation owns exactly one instance and feeds it from a
// single goroutine, in arrival order.
type deduplicator struct {
	seen       map[string]struct{}
	duplicates int
}

// NewDeduplicator creates an empty seen-fingerprint set for one import.
func NewDeduplicator() DeduplicatorInterface {
	return &deduplicator{
		seen: make(map[string]struct{}),
	}
}

// Seed pre-loads fingerprints of records already persisted for the owner.
func (d *deduplicator) Seed(fingerprints []string) {
	for _, fp := range fingerprints {
		d.seen[fp] = struct{}{}
	}
}

// Accept records the candidate's fingerprint and returns true if it was not
// seen before. Among identical candidates the first in arrival order wins.
func (d *deduplicator) Accept(candidate *models.TransactionCandidate) bool {
	fp := candidate.Fingerprint()
	if _, dup := d.seen[fp]; dup {
		d.duplicates++
		return false
	}
	d.seen[fp] = struct{}{}
	return true
}

func (d *deduplicator) DuplicateCount() int {
	return d.duplicates
}
