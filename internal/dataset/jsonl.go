// Package dataset loads the JSONL inputs an experiment consumes: labeled
// claim records for the train/test splits, and the reference Q&A rows the
// initial document generation uses.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Harshitk-cp/soulbench/internal/domain"
)

// LoadRecords reads an ordered record list from a JSONL file. Order is
// identity: record i in the file is record i everywhere downstream.
func LoadRecords(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []domain.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var r domain.Record
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return records, nil
}

// QARow is one reference question with per-persona answers keyed by
// column name (e.g. "britain_response", "democrat_answer").
type QARow struct {
	Question string
	Answers  map[string]string
}

func (q *QARow) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	q.Answers = make(map[string]string)
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if k == "question" {
			q.Question = s
			continue
		}
		q.Answers[k] = s
	}
	return nil
}

// LoadQA reads the reference Q&A rows from a JSONL file.
func LoadQA(path string) ([]QARow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rows []QARow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row QARow
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return rows, nil
}

// BuildQAString renders the rows as numbered question/answer pairs using
// the persona's answer column.
func BuildQAString(rows []QARow, answerKey string) string {
	parts := make([]string, 0, len(rows))
	for i, row := range rows {
		parts = append(parts, fmt.Sprintf("Question %d: %s\nAnswer %d: %s",
			i+1, row.Question, i+1, row.Answers[answerKey]))
	}
	return strings.Join(parts, "\n\n")
}
