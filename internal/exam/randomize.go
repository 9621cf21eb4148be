package exam

import (
	"fmt"
	"math/rand/v2"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it, which
// lets tests pass a seeded source.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewShuffler returns a freshly seeded random source for one session.
func NewShuffler() Shuffler {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SelectRange returns questions[start-1 .. end-1] for a 1-based inclusive range.
// Question order is preserved.
func SelectRange(questions []models.Question, start, end int) ([]models.Question, error) {
	if start < 1 || end < start || end > len(questions) {
		return nil, fmt.Errorf("%w: [%d, %d] of %d questions", ErrInvalidRange, start, end, len(questions))
	}
	return models.CloneQuestions(questions[start-1 : end]), nil
}

// Prepare selects the range and shuffles the options of every single and
// multiple question. Dropdown and drag_drop questions pass through untouched
// because their correct answers are tied to slot positions.
func Prepare(questions []models.Question, start, end int, rng Shuffler) ([]models.Question, error) {
	selected, err := SelectRange(questions, start, end)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewShuffler()
	}
	for i := range selected {
		selected[i] = ShuffleOptions(selected[i], rng)
	}
	return selected, nil
}

type trackedOption struct {
	text    string
	correct bool
}

// ShuffleOptions permutes a single/multiple question's options, relabels them
// A, B, C... by new position and rebuilds the correct answers so they point at
// the same option content. Correctness travels with each original position, so
// duplicate option texts stay unambiguous.
func ShuffleOptions(q models.Question, rng Shuffler) models.Question {
	out := q.Clone()
	if q.Type.IsPositional() || len(q.Options) == 0 {
		return out
	}

	correct := toSet(q.CorrectAnswers)
	tracked := make([]trackedOption, len(q.Options))
	for i, opt := range q.Options {
		_, isCorrect := correct[opt.Label]
		tracked[i] = trackedOption{text: opt.Text, correct: isCorrect}
	}

	rng.Shuffle(len(tracked), func(i, j int) {
		tracked[i], tracked[j] = tracked[j], tracked[i]
	})

	out.Options = make([]models.Option, len(tracked))
	out.CorrectAnswers = []string{}
	for i, opt := range tracked {
		label := OptionLabel(i)
		out.Options[i] = models.Option{Label: label, Text: opt.text}
		if opt.correct {
			out.CorrectAnswers = append(out.CorrectAnswers, label)
		}
	}
	return out
}

// OptionLabel returns the sequential label for a 0-based position:
// A..Z, then AA, AB and so on.
func OptionLabel(i int) string {
	label := ""
	for n := i; n >= 0; n = n/26 - 1 {
		label = string(rune('A'+n%26)) + label
	}
	return label
}
