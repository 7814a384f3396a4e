package main

import (
	"errors"
	"flag"
	"os"

	randomflip "github.com/Truvis/CodeDrop/internal/cmd/randomflip"
	platformcmd "github.com/Truvis/CodeDrop/internal/platform/cmd"
	"github.com/Truvis/CodeDrop/internal/platform/config"
)

// main flips, rolls and replays recorded runs.
func main() {
	platformcmd.SetLogPrefix(platformcmd.ServiceFlip)

	cfg, err := randomflip.ParseConfig(flag.CommandLine, os.Args[1:])
	if errors.Is(err, randomflip.ErrUsage) {
		config.ExitCodef(config.ExitUsage, "%v", err)
	}
	if err != nil {
		config.Exitf("randomflip: %v", err)
	}

	ctx, stop := platformcmd.SignalContext()
	err = randomflip.Run(ctx, cfg, os.Stdin, os.Stdout)
	stop()
	if errors.Is(err, randomflip.ErrUsage) {
		config.ExitCodef(config.ExitUsage, "%v", err)
	}
	if err != nil {
		randomflip.ReportError(os.Stderr, cfg, err)
		os.Exit(config.ExitFailure)
	}
}
