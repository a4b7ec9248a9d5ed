package assignment

import (
	"math/rand"
	"time"

	"review-service/internal/domain"
)

// MaxReviewers caps the number of reviewers assigned at PR creation.
const MaxReviewers = 2

// Strategy selects reviewers uniformly at random from explicit candidate
// lists. It is a pure filter-then-sample step: callers pass the pool and
// exclusions, no store access happens here.
type Strategy struct {
	rng *rand.Rand
}

func NewStrategy() *Strategy {
	return NewStrategyWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewStrategyWithSource builds a strategy over a caller-supplied source,
// which the tests use for determinism.
func NewStrategyWithSource(src rand.Source) *Strategy {
	return &Strategy{rng: rand.New(src)}
}

// SelectCandidates computes the eligible pool: active members of the team
// minus the excluded ids.
func SelectCandidates(members []domain.User, excludeIDs ...string) []string {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	candidates := make([]string, 0, len(members))
	for _, m := range members {
		if !m.CanBeReviewer() {
			continue
		}
		if _, ok := excluded[m.UserID]; ok {
			continue
		}
		candidates = append(candidates, m.UserID)
	}
	return candidates
}

// SelectReviewers picks up to MaxReviewers ids from the candidate pool
// without replacement.
func (s *Strategy) SelectReviewers(candidates []string) []string {
	if len(candidates) == 0 {
		return []string{}
	}

	shuffled := append([]string(nil), candidates...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := MaxReviewers
	if len(shuffled) < n {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// SelectReplacement picks a single id from the candidate pool.
func (s *Strategy) SelectReplacement(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", domain.ErrNoCandidate
	}
	return candidates[s.rng.Intn(len(candidates))], nil
}
