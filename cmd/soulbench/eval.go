package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/Harshitk-cp/soulbench/internal/config"
	"github.com/Harshitk-cp/soulbench/internal/dataset"
	"github.com/Harshitk-cp/soulbench/internal/eval"
	"github.com/Harshitk-cp/soulbench/internal/llm"
	"github.com/Harshitk-cp/soulbench/internal/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type evalFlags struct {
	task      string
	persona   string
	evalModel string
	split     string

	staticPrompt string
	doc          string

	maxConcurrent int
	maxRetries    int
	timeout       time.Duration
	retryDelay    time.Duration

	tasksConfig string
	outDir      string
}

// newEvalCmd runs a single evaluation pass without the revision loop:
// either a baseline static persona prompt or an existing soul document.
func newEvalCmd() *cobra.Command {
	var f evalFlags

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one system prompt against a split, without revising",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evalOnce(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.task, "task", "", "task name from the task registry (required)")
	cmd.Flags().StringVar(&f.persona, "persona", "", "persona name (required)")
	cmd.Flags().StringVar(&f.evalModel, "eval-model", "", "model id for evaluation calls (required)")
	cmd.Flags().StringVar(&f.split, "split", artifact.SplitTest, "dataset split to evaluate (train or test)")
	cmd.Flags().StringVar(&f.staticPrompt, "static-prompt", "",
		fmt.Sprintf("named baseline prompt (one of: %s)", strings.Join(prompt.Names(), ", ")))
	cmd.Flags().StringVar(&f.doc, "doc", "", "path to a soul document to evaluate")
	cmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", 50, "max concurrent evaluation calls")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 3, "additional attempts per record after the first")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 150*time.Second, "per-call timeout")
	cmd.Flags().DurationVar(&f.retryDelay, "retry-delay", 500*time.Millisecond, "fixed delay between attempts")
	cmd.Flags().StringVar(&f.tasksConfig, "tasks-config", "tasks.yaml", "path to the task registry")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "directory for the results file (default: no results written)")

	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("persona")
	_ = cmd.MarkFlagRequired("eval-model")
	cmd.MarkFlagsMutuallyExclusive("static-prompt", "doc")

	return cmd
}

func evalOnce(cmd *cobra.Command, f evalFlags) error {
	if err := config.Load(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry, err := config.LoadTasks(f.tasksConfig)
	if err != nil {
		return err
	}
	task, err := registry.Resolve(f.task, f.persona)
	if err != nil {
		return err
	}

	var dataPath string
	switch f.split {
	case artifact.SplitTrain:
		dataPath = task.TrainPath
	case artifact.SplitTest:
		dataPath = task.TestPath
	default:
		return fmt.Errorf("split must be %s or %s", artifact.SplitTrain, artifact.SplitTest)
	}
	records, err := dataset.LoadRecords(dataPath)
	if err != nil {
		return err
	}

	var systemPrompt string
	switch {
	case f.doc != "":
		b, err := os.ReadFile(f.doc)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		systemPrompt = prompt.ForSoul(string(b))
	case f.staticPrompt != "":
		systemPrompt, err = prompt.Static(f.staticPrompt, task.PersonaName)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --static-prompt or --doc is required")
	}

	client, err := llm.NewClient(config.ChatProvider(), config.OpenRouterAPIKey(), config.OpenRouterBaseURL(),
		config.RateLimitRPS(), config.RateLimitBurst())
	if err != nil {
		return err
	}

	runner := eval.NewRunner(client, f.evalModel, eval.Options{
		MaxConcurrent: f.maxConcurrent,
		Timeout:       f.timeout,
		MaxRetries:    f.maxRetries,
		RetryDelay:    f.retryDelay,
	}, logger)
	runner.OnProgress(func(done, total int) {
		if done%25 == 0 || done == total {
			logger.Info("evaluation progress", zap.Int("done", done), zap.Int("total", total))
		}
	})

	logger.Info("evaluating",
		zap.String("task", task.Task),
		zap.String("persona", task.Persona),
		zap.String("split", f.split),
		zap.Int("records", len(records)))

	results := runner.Evaluate(cmd.Context(), records, systemPrompt)
	stats := eval.Summarize(results)

	if f.outDir != "" {
		store, err := artifact.NewStore(f.outDir)
		if err != nil {
			return err
		}
		if err := store.SaveResults(f.split, 0, results); err != nil {
			return err
		}
		cmd.Printf("Results written to %s\n", store.Dir())
	}

	cmd.Printf("Accuracy: %.3f (%d/%d correct)\n", stats.Accuracy, stats.Correct, stats.Total)
	return nil
}
