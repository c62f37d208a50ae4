package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/domain"
	"github.com/Harshitk-cp/soulbench/internal/llm"
	"go.uber.org/zap"
)

func testRunner(client domain.ChatClient, opts Options) *Runner {
	return NewRunner(client, "test-model", opts, zap.NewNop())
}

func TestEvaluate_OrderPreservedUnderScrambledCompletion(t *testing.T) {
	const n = 20

	records := make([]domain.Record, n)
	for i := range records {
		records[i] = domain.Record{
			Question: fmt.Sprintf("question-%02d", i),
			Choice:   "some claim",
			Label:    true,
		}
	}

	// Replies for early-submitted records land last; the even-indexed
	// questions agree, the odd ones disagree.
	client := llm.NewMockClient()
	client.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		user := req.Messages[1].Content
		var q int
		for i := 0; i < n; i++ {
			if strings.Contains(user, fmt.Sprintf("question-%02d", i)) {
				q = i
				break
			}
		}
		time.Sleep(time.Duration(n-q) * time.Millisecond)
		judgement := domain.JudgementString(q%2 == 0)
		return fmt.Sprintf(`{"judgement": %q, "reasoning": "r%d"}`, judgement, q), nil
	}

	out := testRunner(client, Options{MaxConcurrent: n}).Evaluate(context.Background(), records, "system")

	if len(out) != n {
		t.Fatalf("len = %d, want %d", len(out), n)
	}
	for i, rec := range out {
		if rec.Question != records[i].Question {
			t.Fatalf("record %d question = %q, want %q", i, rec.Question, records[i].Question)
		}
		if rec.Prediction == nil {
			t.Fatalf("record %d has nil prediction", i)
		}
		if want := i%2 == 0; *rec.Prediction != want {
			t.Errorf("record %d prediction = %v, want %v", i, *rec.Prediction, want)
		}
		if want := fmt.Sprintf("r%d", i); rec.Reasoning != want {
			t.Errorf("record %d reasoning = %q, want %q", i, rec.Reasoning, want)
		}
	}
}

func TestEvaluate_RetryBound(t *testing.T) {
	client := llm.NewMockClient()
	client.Err = errors.New("provider down")

	records := []domain.Record{
		{Question: "q0", Label: true},
		{Question: "q1", Label: false},
		{Question: "q2", Label: true},
	}

	opts := Options{MaxConcurrent: 2, MaxRetries: 2, RetryDelay: time.Millisecond}
	out := testRunner(client, opts).Evaluate(context.Background(), records, "system")

	// MaxRetries counts additional attempts: 3 total per record.
	if want := len(records) * 3; client.CallCount() != want {
		t.Errorf("CallCount = %d, want %d", client.CallCount(), want)
	}
	for i, rec := range out {
		if rec.Prediction != nil {
			t.Errorf("record %d prediction = %v, want nil", i, *rec.Prediction)
		}
	}
}

func TestEvaluate_NoVerdictRetried(t *testing.T) {
	client := llm.NewMockClient()
	client.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		if idx < 2 {
			return "I cannot commit to a judgement here.", nil
		}
		return `{"judgement": "disagree", "reasoning": "finally"}`, nil
	}

	records := []domain.Record{{Question: "q", Label: false}}
	opts := Options{MaxConcurrent: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
	out := testRunner(client, opts).Evaluate(context.Background(), records, "system")

	if client.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", client.CallCount())
	}
	if out[0].Prediction == nil || *out[0].Prediction {
		t.Errorf("prediction = %v, want disagree", out[0].Prediction)
	}
	if !out[0].Correct() {
		t.Error("record should be correct")
	}
}

func TestEvaluate_ConcurrencyCeiling(t *testing.T) {
	const limit = 4

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	client := llm.NewMockClient()
	client.RespondFunc = func(idx int, req domain.ChatRequest) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return `{"judgement": "agree", "reasoning": "r"}`, nil
	}

	records := make([]domain.Record, 40)
	for i := range records {
		records[i] = domain.Record{Question: fmt.Sprintf("q%d", i), Label: true}
	}

	testRunner(client, Options{MaxConcurrent: limit}).Evaluate(context.Background(), records, "system")

	if maxInFlight > limit {
		t.Errorf("observed %d concurrent calls, ceiling is %d", maxInFlight, limit)
	}
	if maxInFlight == 0 {
		t.Error("no calls observed")
	}
}

func TestEvaluate_InputNotMutated(t *testing.T) {
	client := llm.NewMockClient()
	records := []domain.Record{{Question: "q", Label: true}}

	out := testRunner(client, Options{MaxConcurrent: 1}).Evaluate(context.Background(), records, "system")

	if records[0].Prediction != nil {
		t.Error("input slice was mutated")
	}
	if out[0].Prediction == nil || !*out[0].Prediction {
		t.Errorf("output prediction = %v, want agree", out[0].Prediction)
	}
}

func TestEvaluate_ProgressMonotone(t *testing.T) {
	client := llm.NewMockClient()

	records := make([]domain.Record, 10)
	for i := range records {
		records[i] = domain.Record{Question: fmt.Sprintf("q%d", i), Label: true}
	}

	var seen []int
	runner := testRunner(client, Options{MaxConcurrent: 4})
	runner.OnProgress(func(done, total int) {
		if total != len(records) {
			t.Errorf("total = %d, want %d", total, len(records))
		}
		seen = append(seen, done)
	})
	runner.Evaluate(context.Background(), records, "system")

	if len(seen) != len(records) {
		t.Fatalf("progress fired %d times, want %d", len(seen), len(records))
	}
	for i, d := range seen {
		if d != i+1 {
			t.Fatalf("progress[%d] = %d, want %d", i, d, i+1)
		}
	}
}
