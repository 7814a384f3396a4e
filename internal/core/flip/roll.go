package flip

import (
	"errors"

	"github.com/Truvis/CodeDrop/internal/random"
)

// ErrInvalidSpan indicates a roll range holding no values.
var ErrInvalidSpan = errors.New("roll range must hold at least one value")

// Roll yields integers from a fixed inclusive range.
type Roll struct {
	gen      *random.Generator
	lower    int
	span     int
	sampling Sampling
}

// NewRoll builds a roll over [0, upto).
func NewRoll(upto int, opts ...Option) Roll {
	return newRoll(0, upto, opts)
}

// NewRange builds a roll over [min, max], both ends included.
//
// A max below min is not rejected; use NewCheckedRange for that.
func NewRange(min, max int, opts ...Option) Roll {
	return newRoll(min, max-min+1, opts)
}

// NewCheckedRoll builds a roll over [0, upto) and fails when upto < 1.
func NewCheckedRoll(upto int, opts ...Option) (Roll, error) {
	if err := ValidateSpan(upto); err != nil {
		return Roll{}, err
	}
	return NewRoll(upto, opts...), nil
}

// NewCheckedRange builds a roll over [min, max] and fails when max < min.
func NewCheckedRange(min, max int, opts ...Option) (Roll, error) {
	if err := ValidateSpan(max - min + 1); err != nil {
		return Roll{}, err
	}
	return NewRange(min, max, opts...), nil
}

// ValidateSpan reports whether span counts at least one value.
func ValidateSpan(span int) error {
	if span < 1 {
		return ErrInvalidSpan
	}
	return nil
}

func newRoll(lower, span int, opts []Option) Roll {
	o := buildOptions(opts)
	return Roll{
		gen:      o.gen,
		lower:    lower,
		span:     span,
		sampling: o.sampling,
	}
}

// Invoke draws a value and reduces it into the roll's range.
//
// With SamplingModulo, a span that does not divide Max+1 evenly favors the
// low end of the range very slightly. A zero span always returns the lower
// bound.
func (r Roll) Invoke() int {
	gen := r.generator()
	v := gen.Draw()
	if r.span == 0 {
		return r.lower
	}
	if r.sampling == SamplingRejection && r.span > 0 {
		limit := rejectionLimit(r.span)
		for v >= limit {
			v = gen.Draw()
		}
	}
	return v%r.span + r.lower
}

// LowerBound returns the smallest value the roll yields.
func (r Roll) LowerBound() int {
	return r.lower
}

// Span returns how many distinct values the roll yields.
func (r Roll) Span() int {
	return r.span
}

// UpperBound returns the largest value the roll yields.
func (r Roll) UpperBound() int {
	return r.lower + r.span - 1
}

// Sampling returns the reduction mode used by Invoke.
func (r Roll) Sampling() Sampling {
	return r.sampling
}

func (r Roll) generator() *random.Generator {
	if r.gen == nil {
		return random.Default()
	}
	return r.gen
}

// rejectionLimit is the largest multiple of span not above Max+1. Spans wider
// than Max+1 accept every draw.
func rejectionLimit(span int) int {
	outcomes := int64(random.Max) + 1
	if int64(span) >= outcomes {
		return int(outcomes)
	}
	return int(outcomes - outcomes%int64(span))
}
