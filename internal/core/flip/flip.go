// Package flip implements weighted coin flips and ranged integer rolls over a
// shared pseudo-random generator.
//
// A Flip or Roll is built once and invoked repeatedly; every invocation draws
// a fresh value from the generator it was constructed with. Values built
// without WithGenerator use random.Default, which is seeded from the wall
// clock before the first draw.
//
//	coin := flip.NewFairFlip()     // 50% true
//	bias := flip.NewFlip(90)       // 90% true
//	slot := flip.NewRoll(100)      // [0, 99]
//	kids := flip.NewRange(1, 10)   // [1, 10]
package flip

import (
	"errors"
	"math"

	"github.com/Truvis/CodeDrop/internal/random"
)

// DefaultBias is the bias of a fair flip.
const DefaultBias = 50

// ErrBiasOutOfRange indicates a flip bias outside [0, 100].
var ErrBiasOutOfRange = errors.New("bias must be between 0 and 100")

// Flip yields true with a probability given by its bias percentage.
type Flip struct {
	gen       *random.Generator
	bias      int
	threshold int
}

// NewFlip builds a flip that is true roughly bias percent of the time.
//
// The bias is not validated. A negative bias never yields true and a bias
// above 100 always does; use NewCheckedFlip to reject such values.
func NewFlip(bias int, opts ...Option) Flip {
	o := buildOptions(opts)
	return Flip{
		gen:       o.gen,
		bias:      bias,
		threshold: thresholdFor(bias),
	}
}

// NewFairFlip builds a flip with DefaultBias.
func NewFairFlip(opts ...Option) Flip {
	return NewFlip(DefaultBias, opts...)
}

// NewCheckedFlip builds a flip after checking the bias with ValidateBias.
func NewCheckedFlip(bias int, opts ...Option) (Flip, error) {
	if err := ValidateBias(bias); err != nil {
		return Flip{}, err
	}
	return NewFlip(bias, opts...), nil
}

// ValidateBias reports whether bias is a percentage.
func ValidateBias(bias int) error {
	if bias < 0 || bias > 100 {
		return ErrBiasOutOfRange
	}
	return nil
}

// Invoke draws one value and reports whether it fell below the threshold.
func (f Flip) Invoke() bool {
	return f.generator().Draw() < f.threshold
}

// Bias returns the percentage the flip was built with.
func (f Flip) Bias() int {
	return f.bias
}

// Threshold returns the cutoff below which a draw counts as true.
func (f Flip) Threshold() int {
	return f.threshold
}

func (f Flip) generator() *random.Generator {
	if f.gen == nil {
		return random.Default()
	}
	return f.gen
}

// thresholdFor converts a bias percentage into a draw cutoff.
func thresholdFor(bias int) int {
	return int(math.Floor(float64(random.Max) * (float64(bias) / 100.0)))
}
