package scoring

import "testing"

func qset() []Q {
	return []Q{
		{ID: "q1", CorrectOption: "a"},
		{ID: "q2", CorrectOption: "b"},
		{ID: "q3", CorrectOption: "c"},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		score   int
		total   int
	}{
		{name: "all correct", answers: map[string]string{"q1": "a", "q2": "b", "q3": "c"}, score: 3, total: 3},
		{name: "two of three", answers: map[string]string{"q1": "a", "q2": "x", "q3": "c"}, score: 2, total: 3},
		{name: "all wrong", answers: map[string]string{"q1": "d", "q2": "d", "q3": "d"}, score: 0, total: 3},
		{name: "empty answer map", answers: map[string]string{}, score: 0, total: 3},
		{name: "nil answer map", answers: nil, score: 0, total: 3},
		{name: "omitted question counts wrong", answers: map[string]string{"q1": "a"}, score: 1, total: 3},
		{name: "unknown question ids ignored", answers: map[string]string{"q1": "a", "zz": "a"}, score: 1, total: 3},
		{name: "case sensitive match", answers: map[string]string{"q1": "A", "q2": "b", "q3": "c"}, score: 2, total: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, total := Score(qset(), tc.answers)
			if score != tc.score || total != tc.total {
				t.Fatalf("expected %d/%d, got %d/%d", tc.score, tc.total, score, total)
			}
		})
	}
}

func TestScore_EmptyQuestionSet(t *testing.T) {
	score, total := Score(nil, map[string]string{"q1": "a"})
	if score != 0 || total != 0 {
		t.Fatalf("expected 0/0, got %d/%d", score, total)
	}
}

func TestNewCA_Range(t *testing.T) {
	ca := NewCA(1)
	for i := 0; i < 1000; i++ {
		v := ca()
		if v < CAMin || v > CAMax {
			t.Fatalf("CA score %d outside [%d,%d]", v, CAMin, CAMax)
		}
	}
}

func TestNewCA_CoversBounds(t *testing.T) {
	ca := NewCA(42)
	seen := map[int]bool{}
	for i := 0; i < 5000; i++ {
		seen[ca()] = true
	}
	if !seen[CAMin] || !seen[CAMax] {
		t.Fatalf("expected both bounds drawn over 5000 samples; min=%v max=%v", seen[CAMin], seen[CAMax])
	}
}
