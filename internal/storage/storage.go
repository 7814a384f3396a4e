package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// RunKind identifies what a run drew.
type RunKind string

const (
	RunKindFlip RunKind = "flip"
	RunKindRoll RunKind = "roll"
)

// SeedSource records who chose a run's seed.
type SeedSource string

const (
	// SeedSourceClient means the caller supplied the seed.
	SeedSourceClient SeedSource = "CLIENT"
	// SeedSourceServer means the seed was generated for the run.
	SeedSourceServer SeedSource = "SERVER"
)

// RunRecord is one stored batch of flips or rolls.
type RunRecord struct {
	ID         string
	Kind       RunKind
	Seed       int64
	SeedSource SeedSource
	// Bias is set for flip runs.
	Bias int
	// LowerBound, Span and Sampling are set for roll runs.
	LowerBound int
	Span       int
	Sampling   string
	Count      int
	// Outcomes holds 0/1 for flips and the rolled values for rolls.
	Outcomes  []int
	CreatedAt time.Time
}

// RunStore persists run records.
type RunStore interface {
	PutRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
