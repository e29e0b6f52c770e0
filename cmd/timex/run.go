package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jihwankim/time-expansion/pkg/config"
	"github.com/jihwankim/time-expansion/pkg/netlist/hdl"
	"github.com/jihwankim/time-expansion/pkg/pipeline"
	"github.com/jihwankim/time-expansion/pkg/reporting"
)

// defaultConfigPath is the config file timex reads when no positional
// argument is given.
const defaultConfigPath = "expansion.conf"

func runExpansion(cmd *cobra.Command, args []string) error {
	cfgPath := defaultConfigPath
	if len(args) == 1 {
		cfgPath = args[0]
	}

	logLevel := reporting.LogLevelInfo
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(logFormat),
		Output: os.Stderr,
	})

	logger.Info("reading configuration", "path", cfgPath)
	raw, err := reporting.ReadFile(cfgPath)
	if err != nil {
		return err
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse configuration: %w", err)
	}

	report := config.Verify(cfg)
	for _, w := range report.Warnings {
		logger.Warn(w)
	}
	if report.HasErrors() {
		for _, e := range report.Errors {
			logger.Error(e.Error())
		}
		return fmt.Errorf("configuration failed verification (%d error(s))", len(report.Errors))
	}

	if outputFile != "" {
		cfg.OutputFile = outputFile
	}

	logger.Info("reading input netlist", "path", cfg.InputFile, "top-module", cfg.TopModule, "method", cfg.ExpandMethod)
	nl, err := hdl.ParseFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("parse input netlist: %w", err)
	}

	pl := pipeline.New(logger)
	result, err := pl.Run(cfg, nl)
	if err != nil {
		return fmt.Errorf("expansion pipeline failed at state %s: %w", pl.State(), err)
	}

	if err := pl.WriteOutputs(cfg, result); err != nil {
		return fmt.Errorf("write output artifacts: %w", err)
	}

	logger.Info("expansion complete",
		"output-verilog", cfg.OutputFile,
		"reference", "ref.v",
		"implementation", "imp.v",
	)
	return nil
}
