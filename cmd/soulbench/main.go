package main

import (
	"fmt"
	"os"

	"github.com/Harshitk-cp/soulbench/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "soulbench",
		Short:         "Evaluate and iteratively revise persona soul documents against survey data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger honoring LOG_LEVEL.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	var level zap.AtomicLevel
	if err := level.UnmarshalText([]byte(config.LogLevel())); err == nil {
		cfg.Level = level
	}
	return cfg.Build()
}
