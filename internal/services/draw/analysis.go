package draw

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Truvis/CodeDrop/internal/storage"
)

// MaxAnalyzedSpan bounds the number of categories in a roll goodness-of-fit test.
const MaxAnalyzedSpan = 1000

// minExpected is the smallest expected count per category for the
// chi-square approximation to hold.
const minExpected = 5

// Analysis summarizes the distribution of a run's outcomes. Flips count as
// 1 for true and 0 for false.
type Analysis struct {
	Mean   float64
	StdDev float64
	Median float64
	// Tested is false when the run is too small or too wide for a
	// goodness-of-fit test; the fields below are then zero.
	Tested           bool
	ChiSquare        float64
	DegreesOfFreedom int
	// PValue is the probability of a deviation at least this large when the
	// outcomes follow the configured bias or a uniform range.
	PValue float64
}

// Analyze computes summary statistics and a chi-square goodness-of-fit test
// for run.
func Analyze(run Run) (Analysis, error) {
	values := outcomeValues(run)
	if len(values) == 0 {
		return Analysis{}, fmt.Errorf("run %s has no outcomes", run.ID)
	}

	var analysis Analysis
	var err error
	if analysis.Mean, err = stats.Mean(values); err != nil {
		return Analysis{}, fmt.Errorf("mean: %w", err)
	}
	if analysis.StdDev, err = stats.StandardDeviationPopulation(values); err != nil {
		return Analysis{}, fmt.Errorf("standard deviation: %w", err)
	}
	if analysis.Median, err = stats.Median(values); err != nil {
		return Analysis{}, fmt.Errorf("median: %w", err)
	}

	observed, expected := categoryCounts(run)
	for _, e := range expected {
		if e > 0 && e < minExpected {
			return analysis, nil
		}
	}
	chi, df := chiSquare(observed, expected)
	if df < 1 {
		return analysis, nil
	}
	analysis.Tested = true
	analysis.ChiSquare = chi
	analysis.DegreesOfFreedom = df
	analysis.PValue = distuv.ChiSquared{K: float64(df)}.Survival(chi)
	return analysis, nil
}

func outcomeValues(run Run) stats.Float64Data {
	if run.Kind == storage.RunKindFlip {
		values := make(stats.Float64Data, len(run.Flips))
		for i, v := range run.Flips {
			if v {
				values[i] = 1
			}
		}
		return values
	}
	return stats.LoadRawData(run.Rolls)
}

// categoryCounts returns observed and expected counts per outcome category.
// It returns nil slices when the run cannot support the test.
func categoryCounts(run Run) ([]float64, []float64) {
	count := float64(run.Count())
	switch run.Kind {
	case storage.RunKindFlip:
		p := float64(run.Bias) / 100
		trues := float64(run.TrueCount())
		return []float64{trues, count - trues}, []float64{count * p, count * (1 - p)}
	case storage.RunKindRoll:
		span := run.UpperBound - run.LowerBound + 1
		if span < 2 || span > MaxAnalyzedSpan {
			return nil, nil
		}
		observed := make([]float64, span)
		for _, v := range run.Rolls {
			observed[v-run.LowerBound]++
		}
		expected := make([]float64, span)
		for i := range expected {
			expected[i] = count / float64(span)
		}
		return observed, expected
	default:
		return nil, nil
	}
}

// chiSquare skips categories with zero expectation.
func chiSquare(observed, expected []float64) (float64, int) {
	var chi float64
	categories := 0
	for i := range observed {
		if expected[i] == 0 {
			continue
		}
		diff := observed[i] - expected[i]
		chi += diff * diff / expected[i]
		categories++
	}
	return chi, categories - 1
}
