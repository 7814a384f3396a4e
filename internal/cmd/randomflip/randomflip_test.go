package randomflip

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Truvis/CodeDrop/internal/platform/errors"
	"github.com/Truvis/CodeDrop/internal/platform/i18n"
	"github.com/Truvis/CodeDrop/internal/platform/status"
)

func testConfig(t *testing.T, command string, args ...string) Config {
	t.Helper()
	t.Setenv("RANDOMFLIP_OTEL_ENDPOINT", "")
	return Config{
		DBPath:  filepath.Join(t.TempDir(), "runs.db"),
		Locale:  "en-US",
		NoColor: true,
		Command: command,
		Args:    args,
	}
}

func runCommand(t *testing.T, cfg Config, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), cfg, strings.NewReader(input), &out)
	return out.String(), err
}

// runIDFrom extracts the run id from a "run <id> seeded with" notice line.
func runIDFrom(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+2 < len(fields); i++ {
			if fields[i] == "run" && fields[i+2] == "seeded" {
				return fields[i+1]
			}
		}
	}
	t.Fatalf("no run id in output %q", output)
	return ""
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("randomflip", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"flip", "-count", "3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/randomflip.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected default locale, got %q", cfg.Locale)
	}
	if cfg.Command != "flip" || len(cfg.Args) != 2 || cfg.Args[1] != "3" {
		t.Fatalf("unexpected command %q args %v", cfg.Command, cfg.Args)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("RANDOMFLIP_DB_PATH", "/tmp/env.db")
	t.Setenv("RANDOMFLIP_LOCALE", "pt-BR")
	t.Setenv("RANDOMFLIP_NO_COLOR", "true")

	fs := flag.NewFlagSet("randomflip", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db", "history"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "pt-BR" || !cfg.NoColor {
		t.Fatalf("expected env locale and no-color, got %q %v", cfg.Locale, cfg.NoColor)
	}
	if cfg.Command != "history" {
		t.Fatalf("expected history command, got %q", cfg.Command)
	}
}

func TestParseConfigRequiresCommand(t *testing.T) {
	fs := flag.NewFlagSet("randomflip", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	_, err := runCommand(t, testConfig(t, "shuffle"), "")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestFlipCommand(t *testing.T) {
	out, err := runCommand(t, testConfig(t, "flip", "-bias", "100", "-count", "10", "-seed", "7", "-list"), "")
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if !strings.Contains(out, "true true true") {
		t.Fatalf("expected listed outcomes, got %q", out)
	}
	if !strings.Contains(out, "[PURR] 10 flips, 10 true (100.0%)") {
		t.Fatalf("expected flip summary, got %q", out)
	}
	if !strings.Contains(out, "seeded with 7 (CLIENT)") {
		t.Fatalf("expected seed notice, got %q", out)
	}
}

func TestFlipCommandLocalized(t *testing.T) {
	cfg := testConfig(t, "flip", "-bias", "0", "-count", "2000")
	cfg.Locale = "pt-BR"
	out, err := runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if !strings.Contains(out, "2.000 lançamentos, 0 verdadeiros (0,0%)") {
		t.Fatalf("expected localized summary, got %q", out)
	}
}

func TestFlipCommandRejectsBias(t *testing.T) {
	cfg := testConfig(t, "flip", "-bias", "120")
	_, err := runCommand(t, cfg, "")
	if !apperrors.IsCode(err, apperrors.CodeFlipBiasOutOfRange) {
		t.Fatalf("expected bias error, got %v", err)
	}

	var buf bytes.Buffer
	ReportError(&buf, cfg, err)
	if got := buf.String(); got != "☒ [HISS] bias 120 is outside 0-100\n" {
		t.Fatalf("report = %q", got)
	}
}

func TestRollReplayAndHistory(t *testing.T) {
	cfg := testConfig(t, "roll", "-min", "1", "-max", "6", "-count", "5", "-rejection")
	out, err := runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !strings.Contains(out, "[PURR] 5 rolls in [1, 6]") {
		t.Fatalf("expected roll summary, got %q", out)
	}
	if !strings.Contains(out, "(SERVER)") {
		t.Fatalf("expected server seed, got %q", out)
	}
	runID := runIDFrom(t, out)

	cfg.Command, cfg.Args = "replay", []string{"-run", runID}
	out, err = runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "run "+runID+" replayed: 5 outcomes match") {
		t.Fatalf("expected replay match, got %q", out)
	}

	cfg.Command, cfg.Args = "history", []string{"-limit", "5"}
	out, err = runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "[MEOW] "+runID) {
		t.Fatalf("expected run in history, got %q", out)
	}
}

func TestReplayCommandErrors(t *testing.T) {
	cfg := testConfig(t, "replay")
	if _, err := runCommand(t, cfg, ""); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	cfg.Args = []string{"-run", "missing"}
	_, err := runCommand(t, cfg, "")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := apperrors.UserMessage(err, cfg.Locale); got != "run missing was not found" {
		t.Fatalf("message = %q", got)
	}
}

func TestRollWithoutHistory(t *testing.T) {
	cfg := testConfig(t, "roll", "-upto", "10", "-count", "3")
	cfg.DBPath = ""
	if _, err := runCommand(t, cfg, ""); err != nil {
		t.Fatalf("roll: %v", err)
	}

	cfg.Command, cfg.Args = "history", nil
	if _, err := runCommand(t, cfg, ""); err == nil {
		t.Fatal("expected history to fail without a database")
	}
}

func TestPromptCommand(t *testing.T) {
	cfg := testConfig(t, "prompt")
	out, err := runCommand(t, cfg, "6\nabc\n\n0\n1\n")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	wants := []string{
		"[MEOW] Please enter a number",
		"[PURR] 6 -> ",
		`[RAWR] "abc" is not a number`,
		"[RAWR] range [0, -1] holds no values",
		"[PURR] 1 -> 0",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}

func TestRollStatsAndAnalyze(t *testing.T) {
	cfg := testConfig(t, "roll", "-min", "1", "-max", "6", "-count", "600", "-seed", "3", "-stats")
	out, err := runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !strings.Contains(out, "on 5 df (p=") {
		t.Fatalf("expected fit statistics, got %q", out)
	}
	runID := runIDFrom(t, out)

	cfg.Command, cfg.Args = "analyze", []string{"-run", runID}
	analyzed, err := runCommand(t, cfg, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	statsLine := func(s string) string {
		for _, line := range strings.Split(s, "\n") {
			if strings.Contains(line, "chi-square") {
				return line
			}
		}
		return ""
	}
	if got, want := statsLine(analyzed), statsLine(out); got == "" || got != want {
		t.Fatalf("analyze line %q differs from roll line %q", got, want)
	}
}

func TestFlipStatsWithoutFitTest(t *testing.T) {
	out, err := runCommand(t, testConfig(t, "flip", "-count", "3", "-stats"), "")
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if !strings.Contains(out, "[MEOW] mean ") || strings.Contains(out, "chi-square") {
		t.Fatalf("expected basic statistics only, got %q", out)
	}
}

func TestSubcommandRejectsStrayArguments(t *testing.T) {
	_, err := runCommand(t, testConfig(t, "flip", "-count", "2", "extra"), "")
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if !strings.Contains(err.Error(), `unexpected argument "extra"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestPromptWarningsColorWholeLine(t *testing.T) {
	var out bytes.Buffer
	r := &runner{
		cfg:    testConfig(t, "prompt"),
		in:     strings.NewReader("abc\n"),
		out:    &out,
		status: &status.Printer{Out: &out, Color: true, Style: status.StyleTag},
		text:   i18n.Printer("en-US"),
	}
	if err := r.prompt(context.Background()); err != nil {
		t.Fatalf("prompt: %v", err)
	}
	want := "\033[33m\033[1m[RAWR] \"abc\" is not a number\033[0m\n"
	if !strings.Contains(out.String(), want) {
		t.Fatalf("expected whole-line warning %q in %q", want, out.String())
	}
	if !strings.Contains(out.String(), "\033[36m\033[1m[MEOW]\033[0m Please enter a number") {
		t.Fatalf("expected tag-styled notice, got %q", out.String())
	}
}
