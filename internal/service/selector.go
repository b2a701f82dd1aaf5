package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tutorpaes/tutor-backend/internal/model"
)

// QuestionSelector picks unseen questions uniformly at random and shuffles
// choices. The random source is injected so tests can fix the sequence.
type QuestionSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuestionSelector creates a selector over src. A nil src seeds from the clock.
func NewQuestionSelector(src rand.Source) *QuestionSelector {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &QuestionSelector{rng: rand.New(src)}
}

// SelectNext returns a random active candidate whose ID is not excluded,
// or ErrTopicExhausted when none is left.
func (s *QuestionSelector) SelectNext(candidates []model.Question, excluded map[int64]struct{}) (*model.Question, error) {
	eligible := make([]int, 0, len(candidates))
	for i, q := range candidates {
		if !q.IsActive {
			continue
		}
		if _, seen := excluded[q.ID]; seen {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return nil, ErrTopicExhausted
	}

	s.mu.Lock()
	pick := eligible[s.rng.IntN(len(eligible))]
	s.mu.Unlock()

	q := candidates[pick]
	return &q, nil
}

// ShuffleChoices returns the choices in random order with correctness stripped.
func (s *QuestionSelector) ShuffleChoices(choices []model.Choice) []model.PublicChoice {
	out := make([]model.PublicChoice, len(choices))
	for i, c := range choices {
		out[i] = model.PublicChoice{ID: c.ID, Label: c.Label, Text: c.Text}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	return out
}
