// Package i18n localizes user-facing summaries and error messages.
//
// Summary strings are registered with golang.org/x/text/message so numbers
// are formatted for the requested locale. Error messages are text/template
// strings keyed by error code.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale.
const BaseLocale = "en-US"

// Summary message keys.
const (
	KeyFlipSummary   = "%d flips, %d true (%.1f%%)"
	KeyRollSummary   = "%d rolls in [%d, %d], mean %.2f"
	KeyRunSeed       = "run %s seeded with %s (%s)"
	KeyReplayMatch   = "run %s replayed: %d outcomes match"
	KeyReplayDiffers = "run %s replayed: outcomes differ"
	KeyPromptAsk     = "Please enter a number"
	KeyPromptInvalid = "%q is not a number"
	KeyRunStats      = "mean %.3f, stddev %.3f, median %.1f, chi-square %.2f on %d df (p=%.4f)"
	KeyRunStatsBasic = "mean %.3f, stddev %.3f, median %.1f"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

var summaries = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		KeyFlipSummary:   "%d lançamentos, %d verdadeiros (%.1f%%)",
		KeyRollSummary:   "%d rolagens em [%d, %d], média %.2f",
		KeyRunSeed:       "execução %s semeada com %s (%s)",
		KeyReplayMatch:   "execução %s repetida: %d resultados conferem",
		KeyReplayDiffers: "execução %s repetida: resultados diferem",
		KeyPromptAsk:     "Digite um número",
		KeyPromptInvalid: "%q não é um número",
		KeyRunStats:      "média %.3f, desvio padrão %.3f, mediana %.1f, qui-quadrado %.2f com %d gl (p=%.4f)",
		KeyRunStatsBasic: "média %.3f, desvio padrão %.3f, mediana %.1f",
	},
}

var errorTemplates = map[language.Tag]map[string]string{
	language.AmericanEnglish: {
		"UNKNOWN":                "an unexpected error occurred",
		"INVALID_ARGUMENT":       "invalid argument",
		"FLIP_BIAS_OUT_OF_RANGE": "bias {{.Bias}} is outside 0-100",
		"ROLL_INVALID_SPAN":      "range [{{.Min}}, {{.Max}}] holds no values",
		"ROLL_AMBIGUOUS_RANGE":   "use either upto or min/max, not both",
		"COUNT_OUT_OF_RANGE":     "count {{.Count}} must be between 1 and {{.Limit}}",
		"NOT_FOUND":              "run {{.RunID}} was not found",
		"REPLAY_MISMATCH":        "run {{.RunID}} did not replay identically",
	},
	language.BrazilianPortuguese: {
		"UNKNOWN":                "ocorreu um erro inesperado",
		"INVALID_ARGUMENT":       "argumento inválido",
		"FLIP_BIAS_OUT_OF_RANGE": "viés {{.Bias}} está fora de 0-100",
		"ROLL_INVALID_SPAN":      "intervalo [{{.Min}}, {{.Max}}] não contém valores",
		"ROLL_AMBIGUOUS_RANGE":   "use upto ou min/max, não ambos",
		"COUNT_OUT_OF_RANGE":     "quantidade {{.Count}} deve estar entre 1 e {{.Limit}}",
		"NOT_FOUND":              "execução {{.RunID}} não encontrada",
		"REPLAY_MISMATCH":        "execução {{.RunID}} não se repetiu igual",
	},
}

func init() {
	for tag, messages := range summaries {
		for key, value := range messages {
			if err := message.SetString(tag, key, value); err != nil {
				panic("i18n: register " + tag.String() + " " + key + ": " + err.Error())
			}
		}
	}
}

// Tag resolves a locale string to the closest supported language.
func Tag(locale string) language.Tag {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		return language.AmericanEnglish
	}
	parsed, err := language.Parse(requested)
	if err != nil {
		return language.AmericanEnglish
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return language.AmericanEnglish
	}
	return supported[index]
}

// Printer returns a message printer for the locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Tag(locale))
}

// FormatError renders the message for code in the locale. Unknown codes fall
// back to the base locale and then to the code itself.
func FormatError(locale, code string, metadata map[string]string) string {
	tmpl, ok := errorTemplates[Tag(locale)][code]
	if !ok {
		tmpl, ok = errorTemplates[language.AmericanEnglish][code]
	}
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
