package draw

import (
	"math"
	"testing"

	"github.com/Truvis/CodeDrop/internal/core/flip"
	"github.com/Truvis/CodeDrop/internal/storage"
)

func repeatBool(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestAnalyzeSummaryStatistics(t *testing.T) {
	run := Run{ID: "r", Kind: storage.RunKindRoll, LowerBound: 1, UpperBound: 4, Rolls: []int{1, 2, 3, 4}}
	analysis, err := Analyze(run)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Mean != 2.5 || analysis.Median != 2.5 {
		t.Fatalf("mean/median = %v/%v, want 2.5/2.5", analysis.Mean, analysis.Median)
	}
	if math.Abs(analysis.StdDev-math.Sqrt(1.25)) > 1e-9 {
		t.Fatalf("stddev = %v", analysis.StdDev)
	}
	if analysis.Tested {
		t.Fatal("expected small run to skip the fit test")
	}
}

func TestAnalyzeBalancedFlips(t *testing.T) {
	run := Run{
		ID:    "f",
		Kind:  storage.RunKindFlip,
		Bias:  50,
		Flips: append(repeatBool(true, 50), repeatBool(false, 50)...),
	}
	analysis, err := Analyze(run)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Mean != 0.5 || analysis.StdDev != 0.5 {
		t.Fatalf("mean/stddev = %v/%v", analysis.Mean, analysis.StdDev)
	}
	if !analysis.Tested || analysis.DegreesOfFreedom != 1 || analysis.ChiSquare != 0 {
		t.Fatalf("unexpected fit: %+v", analysis)
	}
	if math.Abs(analysis.PValue-1) > 1e-9 {
		t.Fatalf("p-value = %v, want 1", analysis.PValue)
	}
}

func TestAnalyzeCertainFlipIsNotTested(t *testing.T) {
	run := Run{ID: "f", Kind: storage.RunKindFlip, Bias: 100, Flips: repeatBool(true, 40)}
	analysis, err := Analyze(run)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Tested {
		t.Fatalf("expected a single category to skip the fit test: %+v", analysis)
	}
	if analysis.Mean != 1 {
		t.Fatalf("mean = %v", analysis.Mean)
	}
}

func TestAnalyzeDetectsRiggedRolls(t *testing.T) {
	rolls := make([]int, 60)
	for i := range rolls {
		rolls[i] = 6
	}
	run := Run{ID: "r", Kind: storage.RunKindRoll, LowerBound: 1, UpperBound: 6, Rolls: rolls}
	analysis, err := Analyze(run)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !analysis.Tested || analysis.DegreesOfFreedom != 5 {
		t.Fatalf("unexpected fit: %+v", analysis)
	}
	// Expected 10 per face: 5 faces contribute 10, one contributes 250.
	if analysis.ChiSquare != 300 {
		t.Fatalf("chi-square = %v, want 300", analysis.ChiSquare)
	}
	if analysis.PValue > 1e-6 {
		t.Fatalf("p-value = %v, expected rigged rolls to be rejected", analysis.PValue)
	}
}

func TestAnalyzeUniformRolls(t *testing.T) {
	for _, sampling := range []flip.Sampling{flip.SamplingModulo, flip.SamplingRejection} {
		run := Run{
			ID:         "r",
			Kind:       storage.RunKindRoll,
			LowerBound: 1,
			UpperBound: 6,
			Sampling:   sampling,
			Rolls:      drawRolls(2718, 1, 6, sampling, 6000),
		}
		analysis, err := Analyze(run)
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		if !analysis.Tested || analysis.DegreesOfFreedom != 5 {
			t.Fatalf("unexpected fit: %+v", analysis)
		}
		if analysis.PValue < 0.001 {
			t.Fatalf("%s rolls failed the uniformity check: %+v", sampling, analysis)
		}
		if math.Abs(analysis.Mean-3.5) > 0.15 {
			t.Fatalf("mean = %v, want about 3.5", analysis.Mean)
		}
	}
}

func TestAnalyzeWideRangeIsNotTested(t *testing.T) {
	run := Run{
		ID:         "r",
		Kind:       storage.RunKindRoll,
		LowerBound: 0,
		UpperBound: MaxAnalyzedSpan,
		Rolls:      drawRolls(1, 0, MaxAnalyzedSpan, flip.SamplingModulo, 10*MaxAnalyzedSpan),
	}
	analysis, err := Analyze(run)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Tested {
		t.Fatal("expected ranges wider than MaxAnalyzedSpan to skip the fit test")
	}
}

func TestAnalyzeEmptyRun(t *testing.T) {
	if _, err := Analyze(Run{ID: "empty", Kind: storage.RunKindRoll}); err == nil {
		t.Fatal("expected error for empty run")
	}
}
