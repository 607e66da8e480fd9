// Package scoring turns an answer map into an objective score and
// generates the continuous-assessment component of a total.
package scoring

import (
	"math/rand"
	"sync"
)

// Q is the minimal view of a question needed for scoring. Keep this in
// sync with whatever fields your store uses.
type Q struct {
	ID            string
	CorrectOption string
}

// Score counts exact, case-sensitive matches between the answer map and
// the correct-option labels. One point per match, no partial credit.
// A question missing from the answer map counts as wrong, never as an
// error, so the returned total is always len(questions).
func Score(questions []Q, answers map[string]string) (score, total int) {
	total = len(questions)
	for _, q := range questions {
		if picked, ok := answers[q.ID]; ok && picked == q.CorrectOption {
			score++
		}
	}
	return score, total
}

// CA score bounds, inclusive.
const (
	CAMin = 20
	CAMax = 35
)

// CAFunc draws a continuous-assessment score. The draw happens exactly
// once per new result; replays read the persisted value instead.
type CAFunc func() int

// NewCA returns a uniform draw over [CAMin, CAMax]. Safe for concurrent
// use by the submission pipeline.
func NewCA(seed int64) CAFunc {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return CAMin + rng.Intn(CAMax-CAMin+1)
	}
}
