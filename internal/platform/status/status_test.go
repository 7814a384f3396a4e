package status

import (
	"bytes"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		printer Printer
		kind    Kind
		want    string
	}{
		{
			name:    "plain without icons",
			printer: Printer{},
			kind:    KindOK,
			want:    "[PURR] done",
		},
		{
			name:    "plain warn with icon",
			printer: Printer{Icons: true},
			kind:    KindWarn,
			want:    "⚠ [RAWR] done",
		},
		{
			name:    "colored tag",
			printer: Printer{Color: true, Style: StyleTag},
			kind:    KindFail,
			want:    "\033[31m\033[1m[HISS]\033[0m done",
		},
		{
			name:    "colored line",
			printer: Printer{Color: true, Style: StyleLine, Icons: true},
			kind:    KindNotice,
			want:    "\033[36m\033[1m😺 [MEOW] done\033[0m",
		},
		{
			name:    "unknown kind falls back to notice",
			printer: Printer{},
			kind:    Kind(42),
			want:    "[MEOW] done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.printer.Format(tt.kind, "done"); got != tt.want {
				t.Fatalf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPrinterDisablesColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	if p.Color {
		t.Fatal("expected color disabled for non-terminal writer")
	}

	p.Printf(KindOK, "%d flips", 3)
	if got := buf.String(); got != "☑ [PURR] 3 flips\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestWithStyleCopies(t *testing.T) {
	var buf bytes.Buffer
	base := &Printer{Out: &buf, Color: true, Style: StyleTag}
	line := base.WithStyle(StyleLine)
	if base.Style != StyleTag {
		t.Fatal("expected the original printer to keep its style")
	}
	line.Print(KindWarn, "careful")
	if got := buf.String(); got != "\033[33m\033[1m[RAWR] careful\033[0m\n" {
		t.Fatalf("output = %q", got)
	}
}
