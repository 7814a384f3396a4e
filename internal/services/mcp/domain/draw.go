package domain

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/message"

	"github.com/Truvis/CodeDrop/internal/core/flip"
	apperrors "github.com/Truvis/CodeDrop/internal/platform/errors"
	"github.com/Truvis/CodeDrop/internal/platform/i18n"
	"github.com/Truvis/CodeDrop/internal/services/draw"
	"github.com/Truvis/CodeDrop/internal/storage"
)

// DrawService is the subset of the draw service used by MCP tools.
type DrawService interface {
	Flip(ctx context.Context, req draw.FlipRequest) (draw.Run, error)
	Roll(ctx context.Context, req draw.RollRequest) (draw.Run, error)
	Replay(ctx context.Context, runID string) (draw.ReplayResult, error)
	Analyze(ctx context.Context, runID string) (draw.Analysis, error)
	History(ctx context.Context, limit int) ([]draw.Run, error)
}

// FlipCoinInput represents the MCP tool input for flipping coins.
type FlipCoinInput struct {
	Bias  *int   `json:"bias,omitempty" jsonschema:"percent chance of true from 0 to 100, defaults to 50"`
	Count int    `json:"count,omitempty" jsonschema:"number of flips, defaults to 1"`
	Seed  *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible run"`
}

// FlipCoinResult represents the MCP tool output for flipping coins.
type FlipCoinResult struct {
	RunID      string `json:"run_id" jsonschema:"identifier used to replay the run"`
	Seed       int64  `json:"seed" jsonschema:"seed the run was drawn from"`
	SeedSource string `json:"seed_source" jsonschema:"CLIENT when the seed was supplied, SERVER otherwise"`
	Bias       int    `json:"bias" jsonschema:"percent chance of true"`
	Outcomes   []bool `json:"outcomes" jsonschema:"flip outcomes in draw order"`
	TrueCount  int    `json:"true_count" jsonschema:"number of true outcomes"`
	Summary    string `json:"summary" jsonschema:"localized summary"`
}

// RollRangeInput represents the MCP tool input for rolling integers.
type RollRangeInput struct {
	Upto     *int   `json:"upto,omitempty" jsonschema:"roll in [0, upto); exclusive with min and max"`
	Min      *int   `json:"min,omitempty" jsonschema:"inclusive lower bound"`
	Max      *int   `json:"max,omitempty" jsonschema:"inclusive upper bound"`
	Count    int    `json:"count,omitempty" jsonschema:"number of rolls, defaults to 1"`
	Seed     *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible run"`
	Sampling string `json:"sampling,omitempty" jsonschema:"modulo (default) or rejection"`
}

// RollRangeResult represents the MCP tool output for rolling integers.
type RollRangeResult struct {
	RunID      string  `json:"run_id" jsonschema:"identifier used to replay the run"`
	Seed       int64   `json:"seed" jsonschema:"seed the run was drawn from"`
	SeedSource string  `json:"seed_source" jsonschema:"CLIENT when the seed was supplied, SERVER otherwise"`
	Min        int     `json:"min" jsonschema:"inclusive lower bound"`
	Max        int     `json:"max" jsonschema:"inclusive upper bound"`
	Sampling   string  `json:"sampling" jsonschema:"sampling strategy used"`
	Outcomes   []int   `json:"outcomes" jsonschema:"roll outcomes in draw order"`
	Mean       float64 `json:"mean" jsonschema:"average rolled value"`
	Summary    string  `json:"summary" jsonschema:"localized summary"`
}

// ReplayRunInput represents the MCP tool input for replaying a run.
type ReplayRunInput struct {
	RunID string `json:"run_id" jsonschema:"identifier of a stored run"`
}

// ReplayRunResult represents the MCP tool output for replaying a run.
type ReplayRunResult struct {
	RunID   string `json:"run_id" jsonschema:"identifier of the replayed run"`
	Kind    string `json:"kind" jsonschema:"flip or roll"`
	Count   int    `json:"count" jsonschema:"number of outcomes compared"`
	Matches bool   `json:"matches" jsonschema:"true when the replay reproduced every outcome"`
	Summary string `json:"summary" jsonschema:"localized summary"`
}

// AnalyzeRunInput represents the MCP tool input for analyzing a run.
type AnalyzeRunInput struct {
	RunID string `json:"run_id" jsonschema:"identifier of a stored run"`
}

// AnalyzeRunResult represents the MCP tool output for analyzing a run.
type AnalyzeRunResult struct {
	RunID            string  `json:"run_id" jsonschema:"identifier of the analyzed run"`
	Mean             float64 `json:"mean" jsonschema:"mean outcome, flips count as 1 for true"`
	StdDev           float64 `json:"stddev" jsonschema:"population standard deviation"`
	Median           float64 `json:"median" jsonschema:"median outcome"`
	Tested           bool    `json:"tested" jsonschema:"false when the run is too small or too wide for a goodness-of-fit test"`
	ChiSquare        float64 `json:"chi_square,omitempty" jsonschema:"chi-square statistic against the configured bias or a uniform range"`
	DegreesOfFreedom int     `json:"degrees_of_freedom,omitempty" jsonschema:"degrees of freedom of the test"`
	PValue           float64 `json:"p_value,omitempty" jsonschema:"probability of a deviation at least this large"`
	Summary          string  `json:"summary" jsonschema:"localized summary"`
}

// ListRunsInput represents the MCP tool input for listing runs.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum runs to return, defaults to 20"`
}

// RunSummary describes one stored run.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Kind       string `json:"kind"`
	Seed       int64  `json:"seed"`
	SeedSource string `json:"seed_source"`
	Count      int    `json:"count"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC3339 creation time"`
	Summary    string `json:"summary"`
}

// ListRunsResult represents the MCP tool output for listing runs.
type ListRunsResult struct {
	Runs []RunSummary `json:"runs" jsonschema:"runs, newest first"`
}

// FlipCoinTool defines the MCP tool schema for flipping coins.
func FlipCoinTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "flip_coin",
		Description: "Flips a biased coin one or more times and records the run",
	}
}

// RollRangeTool defines the MCP tool schema for rolling integers.
func RollRangeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_range",
		Description: "Rolls integers in [0, upto) or [min, max] and records the run",
	}
}

// ReplayRunTool defines the MCP tool schema for replaying runs.
func ReplayRunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "replay_run",
		Description: "Re-executes a stored run from its seed and compares outcomes",
	}
}

// AnalyzeRunTool defines the MCP tool schema for analyzing runs.
func AnalyzeRunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "analyze_run",
		Description: "Summarizes a stored run and tests it against its expected distribution",
	}
}

// ListRunsTool defines the MCP tool schema for listing runs.
func ListRunsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_runs",
		Description: "Lists recorded runs, newest first",
	}
}

// FlipCoinHandler executes a flip run.
func FlipCoinHandler(svc DrawService, locale string) mcp.ToolHandlerFor[FlipCoinInput, FlipCoinResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FlipCoinInput) (*mcp.CallToolResult, FlipCoinResult, error) {
		bias := flip.DefaultBias
		if input.Bias != nil {
			bias = *input.Bias
		}
		run, err := svc.Flip(ctx, draw.FlipRequest{
			Bias:  bias,
			Count: countOrDefault(input.Count),
			Seed:  input.Seed,
		})
		if err != nil {
			return nil, FlipCoinResult{}, toolError(err, locale)
		}

		return nil, FlipCoinResult{
			RunID:      run.ID,
			Seed:       run.Seed,
			SeedSource: string(run.SeedSource),
			Bias:       run.Bias,
			Outcomes:   run.Flips,
			TrueCount:  run.TrueCount(),
			Summary:    runSummary(i18n.Printer(locale), run),
		}, nil
	}
}

// RollRangeHandler executes a roll run.
func RollRangeHandler(svc DrawService, locale string) mcp.ToolHandlerFor[RollRangeInput, RollRangeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollRangeInput) (*mcp.CallToolResult, RollRangeResult, error) {
		sampling, err := flip.ParseSampling(input.Sampling)
		if err != nil {
			return nil, RollRangeResult{}, toolError(apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err), locale)
		}
		run, err := svc.Roll(ctx, draw.RollRequest{
			Upto:     input.Upto,
			Min:      input.Min,
			Max:      input.Max,
			Count:    countOrDefault(input.Count),
			Seed:     input.Seed,
			Sampling: sampling,
		})
		if err != nil {
			return nil, RollRangeResult{}, toolError(err, locale)
		}

		return nil, RollRangeResult{
			RunID:      run.ID,
			Seed:       run.Seed,
			SeedSource: string(run.SeedSource),
			Min:        run.LowerBound,
			Max:        run.UpperBound,
			Sampling:   run.Sampling.String(),
			Outcomes:   run.Rolls,
			Mean:       run.Mean(),
			Summary:    runSummary(i18n.Printer(locale), run),
		}, nil
	}
}

// ReplayRunHandler replays a stored run. A mismatch is reported in the
// result rather than as a tool error.
func ReplayRunHandler(svc DrawService, locale string) mcp.ToolHandlerFor[ReplayRunInput, ReplayRunResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReplayRunInput) (*mcp.CallToolResult, ReplayRunResult, error) {
		result, err := svc.Replay(ctx, input.RunID)
		if err != nil && !apperrors.IsCode(err, apperrors.CodeReplayMismatch) {
			return nil, ReplayRunResult{}, toolError(err, locale)
		}

		p := i18n.Printer(locale)
		summary := p.Sprintf(i18n.KeyReplayMatch, result.Stored.ID, result.Stored.Count())
		if !result.Matches {
			summary = p.Sprintf(i18n.KeyReplayDiffers, result.Stored.ID)
		}
		return nil, ReplayRunResult{
			RunID:   result.Stored.ID,
			Kind:    string(result.Stored.Kind),
			Count:   result.Stored.Count(),
			Matches: result.Matches,
			Summary: summary,
		}, nil
	}
}

// AnalyzeRunHandler computes distribution statistics for a stored run.
func AnalyzeRunHandler(svc DrawService, locale string) mcp.ToolHandlerFor[AnalyzeRunInput, AnalyzeRunResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeRunInput) (*mcp.CallToolResult, AnalyzeRunResult, error) {
		analysis, err := svc.Analyze(ctx, input.RunID)
		if err != nil {
			return nil, AnalyzeRunResult{}, toolError(err, locale)
		}

		p := i18n.Printer(locale)
		summary := p.Sprintf(i18n.KeyRunStatsBasic, analysis.Mean, analysis.StdDev, analysis.Median)
		if analysis.Tested {
			summary = p.Sprintf(i18n.KeyRunStats, analysis.Mean, analysis.StdDev, analysis.Median,
				analysis.ChiSquare, analysis.DegreesOfFreedom, analysis.PValue)
		}
		return nil, AnalyzeRunResult{
			RunID:            input.RunID,
			Mean:             analysis.Mean,
			StdDev:           analysis.StdDev,
			Median:           analysis.Median,
			Tested:           analysis.Tested,
			ChiSquare:        analysis.ChiSquare,
			DegreesOfFreedom: analysis.DegreesOfFreedom,
			PValue:           analysis.PValue,
			Summary:          summary,
		}, nil
	}
}

// ListRunsHandler lists stored runs.
func ListRunsHandler(svc DrawService, locale string) mcp.ToolHandlerFor[ListRunsInput, ListRunsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListRunsInput) (*mcp.CallToolResult, ListRunsResult, error) {
		runs, err := svc.History(ctx, input.Limit)
		if err != nil {
			return nil, ListRunsResult{}, toolError(err, locale)
		}

		p := i18n.Printer(locale)
		summaries := make([]RunSummary, 0, len(runs))
		for _, run := range runs {
			summaries = append(summaries, RunSummary{
				RunID:      run.ID,
				Kind:       string(run.Kind),
				Seed:       run.Seed,
				SeedSource: string(run.SeedSource),
				Count:      run.Count(),
				CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339),
				Summary:    runSummary(p, run),
			})
		}
		return nil, ListRunsResult{Runs: summaries}, nil
	}
}

func countOrDefault(count int) int {
	if count == 0 {
		return 1
	}
	return count
}

func runSummary(p *message.Printer, run draw.Run) string {
	if run.Kind == storage.RunKindFlip {
		count := run.Count()
		pct := 0.0
		if count > 0 {
			pct = float64(run.TrueCount()) * 100 / float64(count)
		}
		return p.Sprintf(i18n.KeyFlipSummary, count, run.TrueCount(), pct)
	}
	return p.Sprintf(i18n.KeyRollSummary, run.Count(), run.LowerBound, run.UpperBound, run.Mean())
}

// toolError renders err for MCP clients. Domain errors carry their code so
// callers can branch on it.
func toolError(err error, locale string) error {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	return errors.New(string(code) + ": " + apperrors.UserMessage(err, locale))
}
