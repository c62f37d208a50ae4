package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/Harshitk-cp/soulbench/internal/domain"
	"github.com/Harshitk-cp/soulbench/internal/eval"
	"github.com/Harshitk-cp/soulbench/internal/llm"
	"github.com/Harshitk-cp/soulbench/internal/revision"
	"go.uber.org/zap"
)

func testOptions() eval.Options {
	return eval.Options{MaxConcurrent: 4, Timeout: time.Second, MaxRetries: 0, RetryDelay: time.Millisecond}
}

func makeRecords(prefix string, n int) []domain.Record {
	records := make([]domain.Record, n)
	for i := range records {
		records[i] = domain.Record{
			Question: fmt.Sprintf("%s-q%d", prefix, i),
			Choice:   fmt.Sprintf("%s-claim%d", prefix, i),
			Label:    true,
		}
	}
	return records
}

func newOrchestrator(t *testing.T, evalClient, revClient domain.ChatClient) (*Orchestrator, *artifact.Store) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()
	runner := eval.NewRunner(evalClient, "eval-model", testOptions(), logger)
	reviser := revision.NewController(revClient, "rev-model", "Britain", logger)
	return NewOrchestrator(runner, reviser, store, logger), store
}

func TestRun_EarlyStopPadsAccuracySeries(t *testing.T) {
	evalClient := llm.NewMockClient() // always agrees; every label is true
	revClient := llm.NewMockClient()

	orch, store := newOrchestrator(t, evalClient, revClient)

	summary, err := orch.Run(context.Background(), Params{
		RunID:            "run-early",
		Iterations:       3,
		MaxWrongExamples: 30,
		Seed:             42,
	}, makeRecords("train", 6), makeRecords("test", 3), "initial doc")
	if err != nil {
		t.Fatal(err)
	}

	// A perfect first round stops revising; the series still hold one
	// entry per round.
	if len(summary.TrainAccuracies) != 4 || len(summary.TestAccuracies) != 4 {
		t.Fatalf("series lengths = %d/%d, want 4/4",
			len(summary.TrainAccuracies), len(summary.TestAccuracies))
	}
	for i := range summary.TrainAccuracies {
		if summary.TrainAccuracies[i] != 1.0 || summary.TestAccuracies[i] != 1.0 {
			t.Errorf("round %d accuracies = %v/%v, want 1/1",
				i, summary.TrainAccuracies[i], summary.TestAccuracies[i])
		}
	}
	if len(summary.Rounds) != 1 || !summary.Rounds[0].EarlyStopped {
		t.Errorf("rounds = %+v, want one early-stopped round", summary.Rounds)
	}
	if revClient.CallCount() != 0 {
		t.Errorf("revision model called %d times, want 0", revClient.CallCount())
	}

	// Only the initial document exists on disk.
	if _, err := store.Document(0); err != nil {
		t.Errorf("document 0 missing: %v", err)
	}
	if _, err := store.Document(1); err == nil {
		t.Error("document 1 should not exist after early stop")
	}
	if _, err := store.Summary(); err != nil {
		t.Errorf("summary missing: %v", err)
	}
}

func TestRun_FullCycle(t *testing.T) {
	// One designated training record is always misclassified; everything
	// else agrees.
	evalClient := llm.NewMockClient()
	evalClient.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		if strings.Contains(req.Messages[1].Content, "train-q3") {
			return `{"judgement": "disagree", "reasoning": "stubborn"}`, nil
		}
		return `{"judgement": "agree", "reasoning": "r"}`, nil
	}

	revClient := llm.NewMockClient()
	revClient.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		return fmt.Sprintf(`{"soul_doc": "revised v%d"}`, idx+1), nil
	}

	orch, store := newOrchestrator(t, evalClient, revClient)

	summary, err := orch.Run(context.Background(), Params{
		RunID:            "run-full",
		Task:             "globaloqa",
		Persona:          "Britain",
		Iterations:       2,
		MaxWrongExamples: 30,
		Seed:             42,
	}, makeRecords("train", 10), makeRecords("test", 5), "initial doc")
	if err != nil {
		t.Fatal(err)
	}

	if len(summary.TrainAccuracies) != 3 {
		t.Fatalf("train series length = %d, want 3", len(summary.TrainAccuracies))
	}
	for i, acc := range summary.TrainAccuracies {
		if acc != 0.9 {
			t.Errorf("round %d train accuracy = %v, want 0.9", i, acc)
		}
	}
	for i, acc := range summary.TestAccuracies {
		if acc != 1.0 {
			t.Errorf("round %d test accuracy = %v, want 1.0", i, acc)
		}
	}
	if len(summary.Rounds) != 3 {
		t.Fatalf("rounds = %d, want 3", len(summary.Rounds))
	}
	if summary.Rounds[0].WrongSampled != 1 || summary.Rounds[1].WrongSampled != 1 {
		t.Errorf("wrong sampled = %d/%d, want 1/1",
			summary.Rounds[0].WrongSampled, summary.Rounds[1].WrongSampled)
	}

	// Revision ran after every round but the last, and its feedback named
	// the misclassified record.
	if revClient.CallCount() != 2 {
		t.Fatalf("revision calls = %d, want 2", revClient.CallCount())
	}
	feedback := revClient.Calls[0].Messages[0].Content
	if !strings.Contains(feedback, "train-q3") || !strings.Contains(feedback, "train-claim3") {
		t.Errorf("feedback missing the wrong example:\n%s", feedback)
	}
	if !strings.Contains(feedback, "initial doc") {
		t.Error("feedback missing the current document")
	}

	// Each round evaluated with its own document version.
	for iter, want := range map[int]string{0: "initial doc", 1: "revised v1", 2: "revised v2"} {
		doc, err := store.Document(iter)
		if err != nil {
			t.Fatalf("document %d: %v", iter, err)
		}
		if doc != want {
			t.Errorf("document %d = %q, want %q", iter, doc, want)
		}
	}

	// Result artifacts preserve order and carry the verdicts.
	trainResults, err := store.Results(artifact.SplitTrain, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(trainResults) != 10 {
		t.Fatalf("train results = %d, want 10", len(trainResults))
	}
	for i, rec := range trainResults {
		if want := fmt.Sprintf("train-q%d", i); rec.Question != want {
			t.Fatalf("result %d question = %q, want %q", i, rec.Question, want)
		}
		if rec.Prediction == nil {
			t.Fatalf("result %d has nil prediction", i)
		}
		if wantCorrect := i != 3; rec.Correct() != wantCorrect {
			t.Errorf("result %d correct = %v, want %v", i, rec.Correct(), wantCorrect)
		}
	}
}

func TestRun_RevisionFailureIsFatal(t *testing.T) {
	evalClient := llm.NewMockClient()
	evalClient.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		return `{"judgement": "disagree", "reasoning": "r"}`, nil
	}

	revClient := llm.NewMockClient()
	revClient.Err = errors.New("provider down")

	orch, store := newOrchestrator(t, evalClient, revClient)

	summary, err := orch.Run(context.Background(), Params{
		RunID:            "run-fatal",
		Iterations:       2,
		MaxWrongExamples: 30,
		Seed:             42,
	}, makeRecords("train", 4), makeRecords("test", 2), "initial doc")

	if !errors.Is(err, revision.ErrNoDocument) {
		t.Fatalf("err = %v, want ErrNoDocument", err)
	}
	if len(summary.TrainAccuracies) != 1 {
		t.Errorf("train series = %d entries, want 1", len(summary.TrainAccuracies))
	}

	// The partial summary made it to disk before the run bailed.
	persisted, err := store.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if persisted.RunID != "run-fatal" || len(persisted.TrainAccuracies) != 1 {
		t.Errorf("persisted summary = %+v", persisted)
	}
}
