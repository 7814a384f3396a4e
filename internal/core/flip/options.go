package flip

import (
	"fmt"
	"strings"

	"github.com/Truvis/CodeDrop/internal/random"
)

// Sampling selects how a roll reduces a draw into its range.
type Sampling int

const (
	// SamplingModulo reduces with v mod span.
	SamplingModulo Sampling = iota
	// SamplingRejection redraws values that would bias the modulo reduction.
	SamplingRejection
)

func (s Sampling) String() string {
	switch s {
	case SamplingModulo:
		return "modulo"
	case SamplingRejection:
		return "rejection"
	default:
		return "unknown"
	}
}

// ParseSampling maps a sampling label to its mode.
func ParseSampling(value string) (Sampling, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "modulo":
		return SamplingModulo, nil
	case "rejection":
		return SamplingRejection, nil
	default:
		return SamplingModulo, fmt.Errorf("unknown sampling %q", value)
	}
}

// Option configures a Flip or Roll.
type Option func(*options)

type options struct {
	gen      *random.Generator
	sampling Sampling
}

// WithGenerator draws from gen instead of the process-wide generator.
func WithGenerator(gen *random.Generator) Option {
	return func(o *options) {
		o.gen = gen
	}
}

// WithSampling selects the roll reduction mode. Flips ignore it.
func WithSampling(sampling Sampling) Option {
	return func(o *options) {
		o.sampling = sampling
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.gen == nil {
		o.gen = random.Default()
	}
	return o
}
