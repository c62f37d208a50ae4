package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/Harshitk-cp/soulbench/internal/config"
	"github.com/Harshitk-cp/soulbench/internal/dataset"
	"github.com/Harshitk-cp/soulbench/internal/eval"
	"github.com/Harshitk-cp/soulbench/internal/llm"
	"github.com/Harshitk-cp/soulbench/internal/revision"
	"github.com/Harshitk-cp/soulbench/internal/run"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	task          string
	persona       string
	evalModel     string
	revisionModel string

	iterations       int
	maxConcurrent    int
	maxRetries       int
	timeout          time.Duration
	retryDelay       time.Duration
	maxWrongExamples int
	seed             int64

	tasksConfig string
	initialDoc  string
	outDir      string
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an iterative soul-document revision experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.task, "task", "", "task name from the task registry (required)")
	cmd.Flags().StringVar(&f.persona, "persona", "", "persona name (required)")
	cmd.Flags().StringVar(&f.evalModel, "eval-model", "", "model id for evaluation calls (required)")
	cmd.Flags().StringVar(&f.revisionModel, "revision-model", "anthropic/claude-sonnet-4-5-20250929", "model id for document generation/revision")
	cmd.Flags().IntVar(&f.iterations, "iterations", 3, "number of revision rounds")
	cmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", 50, "max concurrent evaluation calls")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 3, "additional attempts per record after the first")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 150*time.Second, "per-call timeout")
	cmd.Flags().DurationVar(&f.retryDelay, "retry-delay", 500*time.Millisecond, "fixed delay between attempts")
	cmd.Flags().IntVar(&f.maxWrongExamples, "max-wrong-examples", 30, "max wrong examples in the revision request")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "random seed for wrong-example sampling")
	cmd.Flags().StringVar(&f.tasksConfig, "tasks-config", "tasks.yaml", "path to the task registry")
	cmd.Flags().StringVar(&f.initialDoc, "initial-doc", "", "path to an initial soul document (skips generation)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "output directory (default: results/<task>/<persona>_eval-<model>_rev-<model>)")

	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("persona")
	_ = cmd.MarkFlagRequired("eval-model")

	return cmd
}

func runExperiment(cmd *cobra.Command, f runFlags) error {
	if err := config.Load(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Preconditions fail fast, before any concurrent work starts.
	registry, err := config.LoadTasks(f.tasksConfig)
	if err != nil {
		return err
	}
	task, err := registry.Resolve(f.task, f.persona)
	if err != nil {
		return err
	}

	train, err := dataset.LoadRecords(task.TrainPath)
	if err != nil {
		return err
	}
	test, err := dataset.LoadRecords(task.TestPath)
	if err != nil {
		return err
	}
	logger.Info("datasets loaded",
		zap.Int("train", len(train)),
		zap.Int("test", len(test)))

	provider := config.ChatProvider()
	evalClient, err := llm.NewClient(provider, config.OpenRouterAPIKey(), config.OpenRouterBaseURL(),
		config.RateLimitRPS(), config.RateLimitBurst())
	if err != nil {
		return err
	}
	revisionClient, err := llm.NewClient(provider, config.OpenRouterAPIKey(), config.OpenRouterBaseURL(),
		config.RateLimitRPS(), config.RateLimitBurst())
	if err != nil {
		return err
	}

	runner := eval.NewRunner(evalClient, f.evalModel, eval.Options{
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

	reviser := revision.NewController(revisionClient, f.revisionModel, task.PersonaName, logger)

	ctx := cmd.Context()

	var doc string
	if f.initialDoc != "" {
		b, err := os.ReadFile(f.initialDoc)
		if err != nil {
			return fmt.Errorf("read initial document: %w", err)
		}
		doc = string(b)
		logger.Info("initial document loaded", zap.String("path", f.initialDoc))
	} else {
		if task.QuestionsPath == "" {
			return fmt.Errorf("task %q has no questions_path; supply --initial-doc", task.Task)
		}
		qaRows, err := dataset.LoadQA(task.QuestionsPath)
		if err != nil {
			return err
		}
		logger.Info("generating initial document", zap.String("persona", task.PersonaName))
		doc, err = reviser.Generate(ctx, task.PersonaDesc, dataset.BuildQAString(qaRows, task.AnswerKey))
		if err != nil {
			return err
		}
	}

	outDir := f.outDir
	if outDir == "" {
		outDir = filepath.Join("results", task.Task,
			fmt.Sprintf("%s_eval-%s_rev-%s",
				strings.ToLower(task.Persona), modelSlug(f.evalModel), modelSlug(f.revisionModel)))
	}
	store, err := artifact.NewStore(outDir)
	if err != nil {
		return err
	}
	logger.Info("run starting", zap.String("out_dir", store.Dir()))

	orchestrator := run.NewOrchestrator(runner, reviser, store, logger)
	summary, err := orchestrator.Run(ctx, run.Params{
		RunID:            uuid.NewString(),
		Task:             task.Task,
		Persona:          task.Persona,
		EvalModel:        f.evalModel,
		RevisionModel:    f.revisionModel,
		Iterations:       f.iterations,
		MaxWrongExamples: f.maxWrongExamples,
		Seed:             f.seed,
	}, train, test, doc)
	if err != nil {
		return err
	}

	printSummaryTable(cmd, summary.TrainAccuracies, summary.TestAccuracies)
	cmd.Printf("\nOutput directory: %s\n", store.Dir())
	return nil
}

func printSummaryTable(cmd *cobra.Command, trainAccs, testAccs []float64) {
	cmd.Printf("%-6s %8s %8s\n", "Iter", "Train", "Test")
	for i := range trainAccs {
		cmd.Printf("%-6d %8.3f %8.3f\n", i, trainAccs[i], testAccs[i])
	}
}

func modelSlug(model string) string {
	return strings.ReplaceAll(model, "/", "_")
}
