// Package revision turns evaluation errors into a new soul document. The
// controller builds a feedback request from the current document, the
// aggregate train accuracy, and a sample of misclassified records, then
// extracts a revised document from the model's JSON reply.
package revision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/soulbench/internal/domain"
	"github.com/Harshitk-cp/soulbench/internal/eval"
	"github.com/Harshitk-cp/soulbench/internal/parse"
	"github.com/Harshitk-cp/soulbench/internal/prompt"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// ErrNoDocument is returned once the bounded retry budget is exhausted
// without a usable document. Unlike a failed record evaluation there is
// no partial-success fallback: without a document the next round cannot
// run, so callers treat this as fatal.
var ErrNoDocument = errors.New("no usable soul document in reply")

const documentKey = "soul_doc"

// Controller revises soul documents against a generation model.
type Controller struct {
	client      domain.ChatClient
	model       string
	personaName string
	maxRetries  int
	logger      *zap.Logger
}

func NewController(client domain.ChatClient, model, personaName string, logger *zap.Logger) *Controller {
	return &Controller{
		client:      client,
		model:       model,
		personaName: personaName,
		maxRetries:  defaultMaxRetries,
		logger:      logger,
	}
}

// SetMaxRetries overrides the bounded retry count for document extraction.
func (c *Controller) SetMaxRetries(n int) {
	if n > 0 {
		c.maxRetries = n
	}
}

// Revise produces the next document version from the current one plus the
// round's error feedback. The current document is embedded verbatim; the
// wrong examples carry question, claim, predicted vs correct label, and
// the model's own rationale where one survived parsing.
func (c *Controller) Revise(ctx context.Context, currentDoc string, wrong []domain.Record, stats eval.Stats) (string, error) {
	p := prompt.Revision(
		currentDoc,
		stats.Accuracy, stats.Correct, stats.Total,
		len(wrong), FormatWrongExamples(wrong),
		c.personaName,
	)
	doc, err := c.extractDocument(ctx, p)
	if err != nil {
		return "", fmt.Errorf("revise soul document: %w", err)
	}
	return doc, nil
}

// Generate produces version 0 of a document from the persona's reference
// Q&A pairs, for runs that start without an initial document.
func (c *Controller) Generate(ctx context.Context, personaDesc, qa string) (string, error) {
	p := prompt.InitialGeneration(c.personaName, personaDesc, qa)
	doc, err := c.extractDocument(ctx, p)
	if err != nil {
		return "", fmt.Errorf("generate initial soul document: %w", err)
	}
	return doc, nil
}

// extractDocument calls the model and pulls the document out of its JSON
// reply, retrying on parse and validation failures up to the bounded
// budget. Validation failure and parse failure retry identically.
func (c *Controller) extractDocument(ctx context.Context, userPrompt string) (string, error) {
	req := domain.ChatRequest{
		Model:    c.model,
		Messages: []domain.Message{{Role: domain.RoleUser, Content: userPrompt}},
		JSONMode: true,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		raw, err := c.client.Complete(ctx, req)
		if err != nil {
			lastErr = err
			c.logger.Warn("revision call failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxRetries),
				zap.Error(err))
			continue
		}

		doc, err := documentFromReply(raw)
		if err != nil {
			lastErr = err
			c.logger.Warn("revision reply invalid",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxRetries),
				zap.Error(err))
			continue
		}
		return doc, nil
	}

	return "", fmt.Errorf("%w (after %d attempts): %v", ErrNoDocument, c.maxRetries, lastErr)
}

// documentFromReply extracts the document string from a reply object.
// The exact key wins; otherwise any key containing "soul" with a
// non-empty string value is accepted, which absorbs the key drift some
// models produce ("soul_document", "SoulDoc", ...).
func documentFromReply(raw string) (string, error) {
	obj, err := parse.Object(raw)
	if err != nil {
		return "", err
	}

	if v, ok := obj[documentKey].(string); ok && strings.TrimSpace(v) != "" {
		return v, nil
	}
	for k, v := range obj {
		if !strings.Contains(strings.ToLower(k), "soul") {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return "", fmt.Errorf("reply object missing %q (got keys: %v)", documentKey, keys)
}

// FormatWrongExamples renders the misclassified records for the feedback
// request, one numbered block per example.
func FormatWrongExamples(wrong []domain.Record) string {
	parts := make([]string, 0, len(wrong))
	for i, r := range wrong {
		predicted := "none"
		if r.Prediction != nil {
			predicted = domain.JudgementString(*r.Prediction)
		}
		entry := fmt.Sprintf(
			"Example %d:\n  Question: %s\n  Claim: %s\n  Model predicted: %s\n  Correct answer: %s",
			i+1, r.Question, r.Claim(), predicted, domain.JudgementString(r.Label),
		)
		if reasoning := strings.TrimSpace(r.Reasoning); reasoning != "" {
			entry += "\n  Model's reasoning: " + reasoning
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, "\n\n")
}
