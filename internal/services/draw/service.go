// Package draw runs batches of flips and rolls on reproducible streams and
// records them so they can be replayed later.
//
// Each run draws from its own generator created from the run's seed, so a
// stored run can always be re-executed to the same outcomes.
package draw

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Truvis/CodeDrop/internal/core/flip"
	apperrors "github.com/Truvis/CodeDrop/internal/platform/errors"
	"github.com/Truvis/CodeDrop/internal/platform/id"
	"github.com/Truvis/CodeDrop/internal/platform/otel"
	"github.com/Truvis/CodeDrop/internal/random"
	"github.com/Truvis/CodeDrop/internal/storage"
)

// MaxCount bounds the number of draws in a single run.
const MaxCount = 100000

// ErrHistoryDisabled indicates an operation needs a run store but none is configured.
var ErrHistoryDisabled = errors.New("run history is not configured")

// FlipRequest describes a batch of flips.
type FlipRequest struct {
	Bias  int
	Count int
	// Seed fixes the stream; nil draws a fresh seed.
	Seed *int64
}

// RollRequest describes a batch of rolls. Set either Upto or both Min and Max.
type RollRequest struct {
	Upto     *int
	Min      *int
	Max      *int
	Count    int
	Seed     *int64
	Sampling flip.Sampling
}

// Run is the result of a flip or roll batch.
type Run struct {
	ID         string
	Kind       storage.RunKind
	Seed       int64
	SeedSource storage.SeedSource
	Bias       int
	LowerBound int
	UpperBound int
	Sampling   flip.Sampling
	Flips      []bool
	Rolls      []int
	CreatedAt  time.Time
}

// Count returns the number of draws in the run.
func (r Run) Count() int {
	if r.Kind == storage.RunKindFlip {
		return len(r.Flips)
	}
	return len(r.Rolls)
}

// TrueCount returns how many flips came up true.
func (r Run) TrueCount() int {
	n := 0
	for _, v := range r.Flips {
		if v {
			n++
		}
	}
	return n
}

// Mean returns the average rolled value, or zero for an empty run.
func (r Run) Mean() float64 {
	mean, err := stats.Mean(stats.LoadRawData(r.Rolls))
	if err != nil {
		return 0
	}
	return mean
}

// ReplayResult compares a stored run with its re-execution.
type ReplayResult struct {
	Stored   Run
	Replayed Run
	Matches  bool
}

// Service executes and records runs.
type Service struct {
	store   storage.RunStore
	now     func() time.Time
	newSeed func() (int64, error)
	newID   func() (string, error)
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithStore records runs in store. Without it runs are not persisted and
// Replay and History fail with ErrHistoryDisabled.
func WithStore(store storage.RunStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSeedSource overrides how seeds are chosen when a request has none.
func WithSeedSource(newSeed func() (int64, error)) Option {
	return func(s *Service) {
		s.newSeed = newSeed
	}
}

// New creates a draw service.
func New(opts ...Option) *Service {
	s := &Service{
		now:     time.Now,
		newSeed: random.NewSeed,
		newID:   id.NewID,
		tracer:  otel.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flip runs a batch of flips.
func (s *Service) Flip(ctx context.Context, req FlipRequest) (run Run, err error) {
	ctx, span := s.tracer.Start(ctx, "draw.Flip", trace.WithAttributes(
		attribute.Int("flip.bias", req.Bias),
		attribute.Int("draw.count", req.Count),
	))
	defer func() { endSpan(span, err) }()

	if err := validateCount(req.Count); err != nil {
		return Run{}, err
	}
	if err := flip.ValidateBias(req.Bias); err != nil {
		return Run{}, apperrors.WrapWithMetadata(apperrors.CodeFlipBiasOutOfRange,
			fmt.Sprintf("flip bias %d", req.Bias),
			map[string]string{"Bias": strconv.Itoa(req.Bias)}, err)
	}

	seed, source, err := s.resolveSeed(req.Seed)
	if err != nil {
		return Run{}, err
	}
	run = Run{
		Kind:       storage.RunKindFlip,
		Seed:       seed,
		SeedSource: source,
		Bias:       req.Bias,
		LowerBound: 0,
		UpperBound: 1,
		Flips:      drawFlips(seed, req.Bias, req.Count),
	}
	span.SetAttributes(attribute.Int64("draw.seed", seed))
	return s.record(ctx, run)
}

// Roll runs a batch of rolls.
func (s *Service) Roll(ctx context.Context, req RollRequest) (run Run, err error) {
	ctx, span := s.tracer.Start(ctx, "draw.Roll", trace.WithAttributes(
		attribute.Int("draw.count", req.Count),
		attribute.String("roll.sampling", req.Sampling.String()),
	))
	defer func() { endSpan(span, err) }()

	if err := validateCount(req.Count); err != nil {
		return Run{}, err
	}
	lower, upper, err := rollBounds(req)
	if err != nil {
		return Run{}, err
	}

	seed, source, err := s.resolveSeed(req.Seed)
	if err != nil {
		return Run{}, err
	}
	run = Run{
		Kind:       storage.RunKindRoll,
		Seed:       seed,
		SeedSource: source,
		LowerBound: lower,
		UpperBound: upper,
		Sampling:   req.Sampling,
		Rolls:      drawRolls(seed, lower, upper, req.Sampling, req.Count),
	}
	span.SetAttributes(
		attribute.Int64("draw.seed", seed),
		attribute.Int("roll.lower", lower),
		attribute.Int("roll.upper", upper),
	)
	return s.record(ctx, run)
}

// Replay re-executes a stored run from its seed. A run whose outcomes differ
// returns the comparison together with a REPLAY_MISMATCH error.
func (s *Service) Replay(ctx context.Context, runID string) (result ReplayResult, err error) {
	ctx, span := s.tracer.Start(ctx, "draw.Replay", trace.WithAttributes(
		attribute.String("run.id", runID),
	))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return ReplayResult{}, ErrHistoryDisabled
	}
	record, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return ReplayResult{}, lookupError(runID, err)
	}

	stored, err := runFromRecord(record)
	if err != nil {
		return ReplayResult{}, err
	}
	replayed := stored
	switch stored.Kind {
	case storage.RunKindFlip:
		replayed.Flips = drawFlips(stored.Seed, stored.Bias, len(stored.Flips))
	case storage.RunKindRoll:
		replayed.Rolls = drawRolls(stored.Seed, stored.LowerBound, stored.UpperBound, stored.Sampling, len(stored.Rolls))
	}

	result = ReplayResult{
		Stored:   stored,
		Replayed: replayed,
		Matches:  sameOutcomes(stored, replayed),
	}
	span.SetAttributes(attribute.Bool("replay.matches", result.Matches))
	if !result.Matches {
		return result, apperrors.WithMetadata(apperrors.CodeReplayMismatch,
			fmt.Sprintf("run %s replay mismatch", runID),
			map[string]string{"RunID": runID})
	}
	return result, nil
}

// Analyze loads a stored run and computes its distribution summary.
func (s *Service) Analyze(ctx context.Context, runID string) (analysis Analysis, err error) {
	ctx, span := s.tracer.Start(ctx, "draw.Analyze", trace.WithAttributes(
		attribute.String("run.id", runID),
	))
	defer func() { endSpan(span, err) }()

	run, err := s.Get(ctx, runID)
	if err != nil {
		return Analysis{}, err
	}
	analysis, err = Analyze(run)
	if err != nil {
		return Analysis{}, err
	}
	span.SetAttributes(attribute.Bool("analysis.tested", analysis.Tested))
	return analysis, nil
}

// Get loads a stored run.
func (s *Service) Get(ctx context.Context, runID string) (Run, error) {
	if s.store == nil {
		return Run{}, ErrHistoryDisabled
	}
	record, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return Run{}, lookupError(runID, err)
	}
	return runFromRecord(record)
}

// History lists up to limit stored runs, newest first.
func (s *Service) History(ctx context.Context, limit int) (runs []Run, err error) {
	ctx, span := s.tracer.Start(ctx, "draw.History", trace.WithAttributes(
		attribute.Int("history.limit", limit),
	))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	records, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs = make([]Run, 0, len(records))
	for _, record := range records {
		run, err := runFromRecord(record)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *Service) resolveSeed(seed *int64) (int64, storage.SeedSource, error) {
	if seed != nil {
		return *seed, storage.SeedSourceClient, nil
	}
	value, err := s.newSeed()
	if err != nil {
		return 0, "", fmt.Errorf("choose seed: %w", err)
	}
	return value, storage.SeedSourceServer, nil
}

func (s *Service) record(ctx context.Context, run Run) (Run, error) {
	runID, err := s.newID()
	if err != nil {
		return Run{}, err
	}
	run.ID = runID
	run.CreatedAt = s.now().UTC()

	if s.store == nil {
		return run, nil
	}
	if err := s.store.PutRun(ctx, recordFromRun(run)); err != nil {
		return Run{}, fmt.Errorf("store run: %w", err)
	}
	return run, nil
}

func validateCount(count int) error {
	if count < 1 || count > MaxCount {
		return apperrors.WithMetadata(apperrors.CodeCountOutOfRange,
			fmt.Sprintf("count %d out of range", count),
			map[string]string{"Count": strconv.Itoa(count), "Limit": strconv.Itoa(MaxCount)})
	}
	return nil
}

// rollBounds resolves the inclusive bounds of a roll request.
func rollBounds(req RollRequest) (int, int, error) {
	hasRange := req.Min != nil || req.Max != nil
	if req.Upto != nil && hasRange {
		return 0, 0, apperrors.New(apperrors.CodeRollAmbiguousRange, "roll request sets both upto and min/max")
	}

	var lower, upper int
	switch {
	case req.Upto != nil:
		lower, upper = 0, *req.Upto-1
	case req.Min != nil && req.Max != nil:
		lower, upper = *req.Min, *req.Max
	default:
		return 0, 0, apperrors.New(apperrors.CodeInvalidArgument, "roll request needs upto or both min and max")
	}

	if err := flip.ValidateSpan(upper - lower + 1); err != nil {
		return 0, 0, apperrors.WrapWithMetadata(apperrors.CodeRollInvalidSpan,
			fmt.Sprintf("roll range [%d, %d]", lower, upper),
			map[string]string{"Min": strconv.Itoa(lower), "Max": strconv.Itoa(upper)}, err)
	}
	return lower, upper, nil
}

func drawFlips(seed int64, bias, count int) []bool {
	f := flip.NewFlip(bias, flip.WithGenerator(random.New(seed)))
	out := make([]bool, count)
	for i := range out {
		out[i] = f.Invoke()
	}
	return out
}

func drawRolls(seed int64, lower, upper int, sampling flip.Sampling, count int) []int {
	r := flip.NewRange(lower, upper, flip.WithGenerator(random.New(seed)), flip.WithSampling(sampling))
	out := make([]int, count)
	for i := range out {
		out[i] = r.Invoke()
	}
	return out
}

func sameOutcomes(a, b Run) bool {
	if len(a.Flips) != len(b.Flips) || len(a.Rolls) != len(b.Rolls) {
		return false
	}
	for i := range a.Flips {
		if a.Flips[i] != b.Flips[i] {
			return false
		}
	}
	for i := range a.Rolls {
		if a.Rolls[i] != b.Rolls[i] {
			return false
		}
	}
	return true
}

func lookupError(runID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("run %s not found", runID),
			map[string]string{"RunID": runID}, err)
	}
	return fmt.Errorf("get run: %w", err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
