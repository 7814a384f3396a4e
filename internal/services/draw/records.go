package draw

import (
	"fmt"

	"github.com/Truvis/CodeDrop/internal/core/flip"
	"github.com/Truvis/CodeDrop/internal/storage"
)

func recordFromRun(run Run) storage.RunRecord {
	record := storage.RunRecord{
		ID:         run.ID,
		Kind:       run.Kind,
		Seed:       run.Seed,
		SeedSource: run.SeedSource,
		CreatedAt:  run.CreatedAt,
	}
	switch run.Kind {
	case storage.RunKindFlip:
		record.Bias = run.Bias
		record.Outcomes = make([]int, len(run.Flips))
		for i, v := range run.Flips {
			if v {
				record.Outcomes[i] = 1
			}
		}
	case storage.RunKindRoll:
		record.LowerBound = run.LowerBound
		record.Span = run.UpperBound - run.LowerBound + 1
		record.Sampling = run.Sampling.String()
		record.Outcomes = append([]int(nil), run.Rolls...)
	}
	record.Count = len(record.Outcomes)
	return record
}

func runFromRecord(record storage.RunRecord) (Run, error) {
	run := Run{
		ID:         record.ID,
		Kind:       record.Kind,
		Seed:       record.Seed,
		SeedSource: record.SeedSource,
		CreatedAt:  record.CreatedAt,
	}
	switch record.Kind {
	case storage.RunKindFlip:
		run.Bias = record.Bias
		run.UpperBound = 1
		run.Flips = make([]bool, len(record.Outcomes))
		for i, v := range record.Outcomes {
			run.Flips[i] = v != 0
		}
	case storage.RunKindRoll:
		sampling, err := flip.ParseSampling(record.Sampling)
		if err != nil {
			return Run{}, fmt.Errorf("run %s: %w", record.ID, err)
		}
		run.LowerBound = record.LowerBound
		run.UpperBound = record.LowerBound + record.Span - 1
		run.Sampling = sampling
		run.Rolls = append([]int(nil), record.Outcomes...)
	default:
		return Run{}, fmt.Errorf("run %s has unsupported kind %q", record.ID, record.Kind)
	}
	return run, nil
}
