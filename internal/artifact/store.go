// Package artifact persists per-round experiment outputs to a run
// directory. Every round writes its document and result files before the
// next round starts, so any round is reproducible from disk alone.
package artifact

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harshitk-cp/soulbench/internal/domain"
)

const (
	docPattern     = "soul_doc_iter_%d.txt"
	resultsPattern = "%s_results_iter_%d.jsonl"
	summaryFile    = "summary.json"

	SplitTrain = "train"
	SplitTest  = "test"
)

// Store writes and reads the artifacts of a single run directory.
type Store struct {
	dir string
}

// NewStore creates the run directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the run directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SaveDocument writes the soul document for an iteration. Documents are
// immutable once produced: each iteration gets its own file and no file
// is ever rewritten by a later round.
func (s *Store) SaveDocument(iteration int, doc string) error {
	path := filepath.Join(s.dir, fmt.Sprintf(docPattern, iteration))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("save document iter %d: %w", iteration, err)
	}
	return nil
}

// Document reads the soul document saved for an iteration.
func (s *Store) Document(iteration int) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, fmt.Sprintf(docPattern, iteration)))
	if err != nil {
		return "", fmt.Errorf("read document iter %d: %w", iteration, err)
	}
	return string(b), nil
}

// SaveResults writes the augmented records of one evaluation pass as
// JSONL, one record per line in input order.
func (s *Store) SaveResults(split string, iteration int, records []domain.Record) error {
	path := filepath.Join(s.dir, fmt.Sprintf(resultsPattern, split, iteration))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("write %s results iter %d: %w", split, iteration, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s results iter %d: %w", split, iteration, err)
	}
	return nil
}

// Results reads back one evaluation pass.
func (s *Store) Results(split string, iteration int) ([]domain.Record, error) {
	path := filepath.Join(s.dir, fmt.Sprintf(resultsPattern, split, iteration))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []domain.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var r domain.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("parse results %s: %w", path, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return records, nil
}

// SaveSummary writes the run summary.
func (s *Store) SaveSummary(summary *domain.Summary) error {
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, summaryFile), b, 0o644); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

// Summary reads the run summary.
func (s *Store) Summary() (*domain.Summary, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, summaryFile))
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var summary domain.Summary
	if err := json.Unmarshal(b, &summary); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &summary, nil
}
