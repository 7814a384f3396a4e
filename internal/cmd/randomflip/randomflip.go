// Package randomflip parses randomflip command flags and runs its subcommands.
package randomflip

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/message"

	"github.com/Truvis/CodeDrop/internal/core/flip"
	platformcmd "github.com/Truvis/CodeDrop/internal/platform/cmd"
	apperrors "github.com/Truvis/CodeDrop/internal/platform/errors"
	"github.com/Truvis/CodeDrop/internal/platform/i18n"
	"github.com/Truvis/CodeDrop/internal/platform/status"
	"github.com/Truvis/CodeDrop/internal/services/draw"
	"github.com/Truvis/CodeDrop/internal/storage"
	"github.com/Truvis/CodeDrop/internal/storage/sqlite"
)

const usage = "usage: randomflip [-db path] [-locale tag] [-no-color] <flip|roll|replay|analyze|history|prompt> [flags]"

// ErrUsage reports a missing or unknown subcommand.
var ErrUsage = errors.New(usage)

// Config holds randomflip command configuration.
type Config struct {
	DBPath  string `env:"RANDOMFLIP_DB_PATH"  envDefault:"data/randomflip.db"`
	Locale  string `env:"RANDOMFLIP_LOCALE"   envDefault:"en-US"`
	NoColor bool   `env:"RANDOMFLIP_NO_COLOR"`

	// Command is the subcommand name and Args its remaining arguments.
	Command string
	Args    []string
}

// ParseConfig parses environment and global flags into a Config. The first
// positional argument selects the subcommand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "run history database path (empty disables history)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "output locale")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colored output")
	rest, err := platformcmd.ParseArgs(fs, args)
	if err != nil {
		return Config{}, err
	}
	if len(rest) == 0 {
		return Config{}, ErrUsage
	}
	cfg.Command = rest[0]
	cfg.Args = rest[1:]
	return cfg, nil
}

// Run executes the configured subcommand.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}

	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceFlip, func(ctx context.Context) error {
		r := &runner{
			cfg:    cfg,
			in:     in,
			out:    out,
			status: status.NewPrinter(out, cfg.NoColor),
			text:   i18n.Printer(cfg.Locale),
		}
		switch cfg.Command {
		case "flip":
			return r.withService(ctx, r.flip)
		case "roll":
			return r.withService(ctx, r.roll)
		case "replay":
			return r.withService(ctx, r.replay)
		case "analyze":
			return r.withService(ctx, r.analyze)
		case "history":
			return r.withService(ctx, r.history)
		case "prompt":
			return r.prompt(ctx)
		default:
			return fmt.Errorf("unknown command %q: %w", cfg.Command, ErrUsage)
		}
	})
}

// ReportError writes err as a localized failure line.
func ReportError(out io.Writer, cfg Config, err error) {
	if err == nil {
		return
	}
	status.NewPrinter(out, cfg.NoColor).Print(status.KindFail, apperrors.UserMessage(err, cfg.Locale))
}

type runner struct {
	cfg    Config
	in     io.Reader
	out    io.Writer
	status *status.Printer
	text   *message.Printer
}

type commandFunc func(ctx context.Context, svc *draw.Service) error

func (r *runner) withService(ctx context.Context, run commandFunc) error {
	if strings.TrimSpace(r.cfg.DBPath) == "" {
		return run(ctx, draw.New())
	}

	store, err := sqlite.Open(r.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close run store: %v", err)
		}
	}()
	return run(ctx, draw.New(draw.WithStore(store)))
}

func (r *runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	return fs
}

// parse parses subcommand flags and rejects stray positional arguments.
func (r *runner) parse(fs *flag.FlagSet) error {
	rest, err := platformcmd.ParseArgs(fs, r.cfg.Args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("%s: unexpected argument %q", fs.Name(), rest[0]))
	}
	return nil
}

func (r *runner) flip(ctx context.Context, svc *draw.Service) error {
	fs := r.flagSet("flip")
	bias := fs.Int("bias", flip.DefaultBias, "percent chance of true (0-100)")
	count := fs.Int("count", 1, "number of flips")
	seed := fs.Int64("seed", 0, "seed for a reproducible run")
	list := fs.Bool("list", false, "print every outcome")
	showStats := fs.Bool("stats", false, "print distribution statistics")
	if err := r.parse(fs); err != nil {
		return err
	}

	req := draw.FlipRequest{Bias: *bias, Count: *count}
	if isSet(fs, "seed") {
		req.Seed = seed
	}
	run, err := svc.Flip(ctx, req)
	if err != nil {
		return err
	}

	if *list {
		outcomes := make([]string, len(run.Flips))
		for i, v := range run.Flips {
			outcomes[i] = strconv.FormatBool(v)
		}
		fmt.Fprintln(r.out, strings.Join(outcomes, " "))
	}
	r.status.Print(status.KindOK, flipSummary(r.text, run))
	r.status.Print(status.KindNotice, r.text.Sprintf(i18n.KeyRunSeed, run.ID, strconv.FormatInt(run.Seed, 10), run.SeedSource))
	if *showStats {
		analysis, err := draw.Analyze(run)
		if err != nil {
			return err
		}
		r.printAnalysis(analysis)
	}
	return nil
}

func (r *runner) roll(ctx context.Context, svc *draw.Service) error {
	fs := r.flagSet("roll")
	upto := fs.Int("upto", 0, "roll in [0, upto)")
	lower := fs.Int("min", 0, "inclusive lower bound")
	upper := fs.Int("max", 0, "inclusive upper bound")
	count := fs.Int("count", 1, "number of rolls")
	seed := fs.Int64("seed", 0, "seed for a reproducible run")
	rejection := fs.Bool("rejection", false, "use rejection sampling instead of modulo")
	list := fs.Bool("list", false, "print every outcome")
	showStats := fs.Bool("stats", false, "print distribution statistics")
	if err := r.parse(fs); err != nil {
		return err
	}

	req := draw.RollRequest{Count: *count}
	if isSet(fs, "upto") {
		req.Upto = upto
	}
	if isSet(fs, "min") {
		req.Min = lower
	}
	if isSet(fs, "max") {
		req.Max = upper
	}
	if isSet(fs, "seed") {
		req.Seed = seed
	}
	if *rejection {
		req.Sampling = flip.SamplingRejection
	}

	run, err := svc.Roll(ctx, req)
	if err != nil {
		return err
	}

	if *list {
		outcomes := make([]string, len(run.Rolls))
		for i, v := range run.Rolls {
			outcomes[i] = strconv.Itoa(v)
		}
		fmt.Fprintln(r.out, strings.Join(outcomes, " "))
	}
	r.status.Print(status.KindOK, rollSummary(r.text, run))
	r.status.Print(status.KindNotice, r.text.Sprintf(i18n.KeyRunSeed, run.ID, strconv.FormatInt(run.Seed, 10), run.SeedSource))
	if *showStats {
		analysis, err := draw.Analyze(run)
		if err != nil {
			return err
		}
		r.printAnalysis(analysis)
	}
	return nil
}

func (r *runner) replay(ctx context.Context, svc *draw.Service) error {
	fs := r.flagSet("replay")
	runID := fs.String("run", "", "run id to replay")
	if err := r.parse(fs); err != nil {
		return err
	}
	if strings.TrimSpace(*runID) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "replay requires -run")
	}

	result, err := svc.Replay(ctx, *runID)
	if apperrors.IsCode(err, apperrors.CodeReplayMismatch) {
		r.status.Print(status.KindWarn, r.text.Sprintf(i18n.KeyReplayDiffers, result.Stored.ID))
		return err
	}
	if err != nil {
		return err
	}
	r.status.Print(status.KindOK, r.text.Sprintf(i18n.KeyReplayMatch, result.Stored.ID, result.Stored.Count()))
	return nil
}

func (r *runner) analyze(ctx context.Context, svc *draw.Service) error {
	fs := r.flagSet("analyze")
	runID := fs.String("run", "", "run id to analyze")
	if err := r.parse(fs); err != nil {
		return err
	}
	if strings.TrimSpace(*runID) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "analyze requires -run")
	}

	analysis, err := svc.Analyze(ctx, *runID)
	if err != nil {
		return err
	}
	r.printAnalysis(analysis)
	return nil
}

// printAnalysis warns when the fit test rejects the run at the 0.1% level.
func (r *runner) printAnalysis(analysis draw.Analysis) {
	if !analysis.Tested {
		r.status.Print(status.KindNotice, r.text.Sprintf(i18n.KeyRunStatsBasic, analysis.Mean, analysis.StdDev, analysis.Median))
		return
	}
	kind := status.KindOK
	if analysis.PValue < 0.001 {
		kind = status.KindWarn
	}
	r.status.Print(kind, r.text.Sprintf(i18n.KeyRunStats,
		analysis.Mean, analysis.StdDev, analysis.Median,
		analysis.ChiSquare, analysis.DegreesOfFreedom, analysis.PValue))
}

func (r *runner) history(ctx context.Context, svc *draw.Service) error {
	fs := r.flagSet("history")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := r.parse(fs); err != nil {
		return err
	}

	runs, err := svc.History(ctx, *limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		summary := rollSummary(r.text, run)
		if run.Kind == storage.RunKindFlip {
			summary = flipSummary(r.text, run)
		}
		r.status.Printf(status.KindNotice, "%s %s %s", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), summary)
	}
	return nil
}

// prompt reads one number per line and rolls it over [0, n) on the shared
// stream until input ends.
func (r *runner) prompt(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	warn := r.status.WithStyle(status.StyleLine)
	r.status.Print(status.KindNotice, r.text.Sprintf(i18n.KeyPromptAsk))
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			warn.Print(status.KindWarn, r.text.Sprintf(i18n.KeyPromptInvalid, line))
			continue
		}
		roll, err := flip.NewCheckedRoll(n)
		if err != nil {
			warn.Print(status.KindWarn, i18n.FormatError(r.cfg.Locale, string(apperrors.CodeRollInvalidSpan), map[string]string{
				"Min": "0",
				"Max": strconv.Itoa(n - 1),
			}))
			continue
		}
		r.status.Printf(status.KindOK, "%d -> %d", n, roll.Invoke())
	}
	return scanner.Err()
}

func flipSummary(p *message.Printer, run draw.Run) string {
	count := run.Count()
	trues := run.TrueCount()
	pct := 0.0
	if count > 0 {
		pct = float64(trues) * 100 / float64(count)
	}
	return p.Sprintf(i18n.KeyFlipSummary, count, trues, pct)
}

func rollSummary(p *message.Printer, run draw.Run) string {
	return p.Sprintf(i18n.KeyRollSummary, run.Count(), run.LowerBound, run.UpperBound, run.Mean())
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
