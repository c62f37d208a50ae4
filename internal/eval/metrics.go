package eval

import (
	"errors"
	"math/rand"

	"github.com/Harshitk-cp/soulbench/internal/domain"
)

// errNoVerdict marks a reply that came back but carried no usable
// judgement. Retryable, and distinct from transport failure.
var errNoVerdict = errors.New("reply carried no judgement")

// Stats summarizes one evaluation pass over a record set.
type Stats struct {
	Correct  int
	Total    int
	Accuracy float64
}

// Accuracy returns the fraction of records whose prediction matches their
// label. An empty set is 0 by convention, not an error. Records with a
// nil prediction (exhausted retries) count as wrong — unresolved records
// are treated as incorrect, never excluded.
func Accuracy(records []domain.Record) float64 {
	return Summarize(records).Accuracy
}

// Summarize computes accuracy together with the correct/total counts the
// revision feedback embeds.
func Summarize(records []domain.Record) Stats {
	s := Stats{Total: len(records)}
	for _, r := range records {
		if r.Correct() {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	return s
}

// SampleWrong returns the misclassified records, downsampled to at most
// maxN with a generator seeded by seed. The same seed and input always
// produce the same sample; experiment reproducibility depends on this.
func SampleWrong(records []domain.Record, maxN int, seed int64) []domain.Record {
	var wrong []domain.Record
	for _, r := range records {
		if !r.Correct() {
			wrong = append(wrong, r)
		}
	}
	if maxN <= 0 || len(wrong) <= maxN {
		return wrong
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	return wrong[:maxN]
}
