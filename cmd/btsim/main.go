package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/injector"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default $BTSIM_CONFIG or ./btsim.yaml)")
	describe := pflag.Bool("describe", false, "print the agent trees and exit")
	pflag.Parse()

	if err := run(*configPath, *describe); err != nil {
		fmt.Fprintln(os.Stderr, "btsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, describe bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}

	if describe {
		out, err := a.Describe()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	if err := a.Populate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
