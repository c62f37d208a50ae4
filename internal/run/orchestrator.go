// Package run drives the train→test→revise cycle across rounds and
// persists per-round artifacts.
package run

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/Harshitk-cp/soulbench/internal/domain"
	"github.com/Harshitk-cp/soulbench/internal/eval"
	"github.com/Harshitk-cp/soulbench/internal/prompt"
	"github.com/Harshitk-cp/soulbench/internal/revision"
	"go.uber.org/zap"
)

// Params configure one experiment run.
type Params struct {
	RunID   string
	Task    string
	Persona string

	EvalModel     string
	RevisionModel string

	// Iterations is the number of revision rounds; the run evaluates
	// iterations+1 document versions (version 0 is the initial document).
	Iterations       int
	MaxWrongExamples int
	Seed             int64
}

// Orchestrator owns one experiment: it evaluates the current document on
// both splits each round, persists artifacts, and asks the revision
// controller for the next version until the budget or a perfect training
// round ends the run.
type Orchestrator struct {
	runner  *eval.Runner
	reviser *revision.Controller
	store   *artifact.Store
	logger  *zap.Logger
}

func NewOrchestrator(runner *eval.Runner, reviser *revision.Controller, store *artifact.Store, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		runner:  runner,
		reviser: reviser,
		store:   store,
		logger:  logger,
	}
}

// Run executes the full cycle starting from initialDoc (version 0). Train
// and test sets are evaluated with the same document each round; the test
// pass is measurement only and never feeds back into revision. If a round
// has no wrong training examples the run stops revising and pads both
// accuracy series with that round's values, so the series always hold
// Iterations+1 entries. A revision failure is fatal: the summary written
// so far is persisted, and the error is returned.
func (o *Orchestrator) Run(ctx context.Context, p Params, train, test []domain.Record, initialDoc string) (*domain.Summary, error) {
	summary := &domain.Summary{
		RunID:            p.RunID,
		Task:             p.Task,
		Persona:          p.Persona,
		EvalModel:        p.EvalModel,
		RevisionModel:    p.RevisionModel,
		Iterations:       p.Iterations,
		Seed:             p.Seed,
		MaxWrongExamples: p.MaxWrongExamples,
		TrainSize:        len(train),
		TestSize:         len(test),
	}

	doc := initialDoc
	totalRounds := p.Iterations + 1

	for iteration := 0; iteration < totalRounds; iteration++ {
		o.logger.Info("iteration starting",
			zap.Int("iteration", iteration),
			zap.Int("total", totalRounds))

		// Each round operates on an immutable document snapshot, saved
		// before any evaluation so the round is reproducible.
		if err := o.store.SaveDocument(iteration, doc); err != nil {
			return summary, err
		}
		systemPrompt := prompt.ForSoul(doc)

		trainResults := o.runner.Evaluate(ctx, train, systemPrompt)
		trainStats := eval.Summarize(trainResults)
		if err := o.store.SaveResults(artifact.SplitTrain, iteration, trainResults); err != nil {
			return summary, err
		}
		o.logger.Info("train evaluated",
			zap.Int("iteration", iteration),
			zap.Float64("accuracy", trainStats.Accuracy),
			zap.Int("correct", trainStats.Correct),
			zap.Int("total", trainStats.Total))

		testResults := o.runner.Evaluate(ctx, test, systemPrompt)
		testAcc := eval.Accuracy(testResults)
		if err := o.store.SaveResults(artifact.SplitTest, iteration, testResults); err != nil {
			return summary, err
		}
		o.logger.Info("test evaluated",
			zap.Int("iteration", iteration),
			zap.Float64("accuracy", testAcc))

		summary.TrainAccuracies = append(summary.TrainAccuracies, trainStats.Accuracy)
		summary.TestAccuracies = append(summary.TestAccuracies, testAcc)
		state := domain.RevisionState{
			Iteration:     iteration,
			TrainAccuracy: trainStats.Accuracy,
			TestAccuracy:  testAcc,
		}

		if iteration == totalRounds-1 {
			summary.Rounds = append(summary.Rounds, state)
			break
		}

		wrong := eval.SampleWrong(trainResults, p.MaxWrongExamples, p.Seed)
		state.WrongSampled = len(wrong)

		if len(wrong) == 0 {
			// Perfect training accuracy: stop revising and replicate this
			// round's values for the remaining rounds.
			state.EarlyStopped = true
			summary.Rounds = append(summary.Rounds, state)
			for pad := iteration + 1; pad < totalRounds; pad++ {
				summary.TrainAccuracies = append(summary.TrainAccuracies, trainStats.Accuracy)
				summary.TestAccuracies = append(summary.TestAccuracies, testAcc)
			}
			o.logger.Info("no wrong examples, stopping early",
				zap.Int("iteration", iteration))
			break
		}
		summary.Rounds = append(summary.Rounds, state)

		o.logger.Info("revising document",
			zap.Int("iteration", iteration),
			zap.Int("wrong_examples", len(wrong)))
		revised, err := o.reviser.Revise(ctx, doc, wrong, trainStats)
		if err != nil {
			// Fatal for the run: without a document the next round cannot
			// proceed. Persist what we have before bailing.
			if saveErr := o.store.SaveSummary(summary); saveErr != nil {
				o.logger.Error("failed to save partial summary", zap.Error(saveErr))
			}
			return summary, fmt.Errorf("iteration %d: %w", iteration, err)
		}
		doc = revised
	}

	if err := o.store.SaveSummary(summary); err != nil {
		return summary, err
	}
	o.logger.Info("run complete",
		zap.String("run_id", p.RunID),
		zap.Float64s("train_accuracies", summary.TrainAccuracies),
		zap.Float64s("test_accuracies", summary.TestAccuracies))
	return summary, nil
}
