package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/examforge/cbt-backend/internal/scoring"
)

func seedCSC101(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.PutCourse(ctx, Course{Code: "CSC101", Title: "Intro to Computing", DurationSec: 1800, QuestionCount: 3}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	qs := []Question{
		{ID: "q1", CourseCode: "CSC101", Text: "1+1?", OptionA: "2", OptionB: "3", OptionC: "4", OptionD: "5", CorrectOption: "a"},
		{ID: "q2", CourseCode: "CSC101", Text: "2+2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectOption: "b"},
		{ID: "q3", CourseCode: "CSC101", Text: "3+3?", OptionA: "5", OptionB: "7", OptionC: "6", OptionD: "8", CorrectOption: "c"},
	}
	if err := store.PutQuestions(ctx, qs); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
}

func fixedCA(v int) scoring.CAFunc { return func() int { return v } }

func TestSubmit_ScoresAndPersists(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store, WithCA(fixedCA(25)))

	res, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric:      "U/2020/001",
		StudentName: "Ada",
		Department:  "CSC",
		CourseCode:  "CSC101",
		Answers:     map[string]string{"q1": "a", "q2": "x", "q3": "c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 2 || res.QuestionTotal != 3 {
		t.Fatalf("expected 2/3, got %d/%d", res.Score, res.QuestionTotal)
	}
	if res.CAScore != 25 || res.TotalScore != 27 {
		t.Fatalf("expected CA=25 total=27, got CA=%d total=%d", res.CAScore, res.TotalScore)
	}

	stored, err := store.GetResult(context.Background(), "U/2020/001", "CSC101")
	if err != nil {
		t.Fatalf("result not persisted: %v", err)
	}
	if stored != res {
		t.Fatalf("stored result differs: %+v vs %+v", stored, res)
	}
}

func TestSubmit_PerfectAndEmptyAnswerMaps(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store, WithCA(fixedCA(20)))

	full, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/010", CourseCode: "CSC101",
		Answers: map[string]string{"q1": "a", "q2": "b", "q3": "c"},
	})
	if err != nil || full.Score != 3 {
		t.Fatalf("expected full marks, got %d err=%v", full.Score, err)
	}

	empty, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/011", CourseCode: "CSC101",
		Answers: map[string]string{},
	})
	if err != nil || empty.Score != 0 || empty.QuestionTotal != 3 {
		t.Fatalf("expected 0/3, got %d/%d err=%v", empty.Score, empty.QuestionTotal, err)
	}
}

func TestSubmit_CAWithinRange(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store)

	res, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/020", CourseCode: "CSC101",
		Answers: map[string]string{"q1": "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CAScore < scoring.CAMin || res.CAScore > scoring.CAMax {
		t.Fatalf("CA %d outside [%d,%d]", res.CAScore, scoring.CAMin, scoring.CAMax)
	}
	if res.TotalScore != res.Score+res.CAScore {
		t.Fatalf("total %d != score %d + CA %d", res.TotalScore, res.Score, res.CAScore)
	}

	// Re-reading the persisted result never re-rolls the CA component.
	again, err := store.GetResult(context.Background(), "U/2020/020", "CSC101")
	if err != nil || again.CAScore != res.CAScore {
		t.Fatalf("CA changed on read: %d vs %d (err=%v)", again.CAScore, res.CAScore, err)
	}
}

func TestSubmit_DuplicateIsConflict(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store, WithCA(fixedCA(30)))

	req := SubmitRequest{
		Matric: "U/2020/002", CourseCode: "CSC101",
		Answers: map[string]string{"q1": "a", "q2": "b", "q3": "c"},
	}
	first, err := svc.SubmitWait(context.Background(), req)
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	_, err = svc.SubmitWait(context.Background(), req)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// Original result untouched.
	stored, err := store.GetResult(context.Background(), req.Matric, req.CourseCode)
	if err != nil || stored != first {
		t.Fatalf("original result disturbed: %+v (err=%v)", stored, err)
	}
}

func TestSubmit_ConcurrentSamePairYieldsOneResult(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store, WithConcurrency(8))

	req := SubmitRequest{
		Matric: "U/2020/003", CourseCode: "CSC101",
		Answers: map[string]string{"q1": "a"},
	}

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitWait(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		var c *ConflictError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &c):
			conflicts++
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}
	if ok != 1 || conflicts != racers-1 {
		t.Fatalf("expected exactly one winner, got ok=%d conflicts=%d", ok, conflicts)
	}
	if _, err := store.GetResult(context.Background(), req.Matric, req.CourseCode); err != nil {
		t.Fatalf("winner's result missing: %v", err)
	}
}

func TestSubmit_Validation(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store)

	tests := []struct {
		name  string
		req   SubmitRequest
		field string
	}{
		{name: "missing matric", req: SubmitRequest{CourseCode: "CSC101", Answers: map[string]string{}}, field: "matric"},
		{name: "missing course", req: SubmitRequest{Matric: "U/2020/004", Answers: map[string]string{}}, field: "course_code"},
		{name: "nil answers", req: SubmitRequest{Matric: "U/2020/004", CourseCode: "CSC101"}, field: "answers"},
		{name: "unknown course", req: SubmitRequest{Matric: "U/2020/004", CourseCode: "NOPE", Answers: map[string]string{}}, field: "course_code"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitWait(context.Background(), tc.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}

	// Nothing persisted for rejected submissions with a known course.
	if _, err := store.GetResult(context.Background(), "U/2020/004", "CSC101"); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected no result, got %v", err)
	}
}

func TestSubmit_UnknownCourseWritesNothing(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store)

	_, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/050", CourseCode: "NOPE", Answers: map[string]string{"q1": "a"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "course_code" {
		t.Fatalf("expected course_code validation error, got %v", err)
	}

	// A rejection must leave no trace, not even the audit row.
	ms := store.(*memoryStore)
	ms.mu.RLock()
	audited := len(ms.submissions)
	ms.mu.RUnlock()
	if audited != 0 {
		t.Fatalf("expected no submission rows after rejection, got %d", audited)
	}
	if _, err := store.GetResult(context.Background(), "U/2020/050", "NOPE"); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected no result, got %v", err)
	}
}

func TestSubmit_StoreFaultDoesNotPoisonQueue(t *testing.T) {
	store := &faultStore{Store: NewInMemoryStore(), failResultFor: "U/2020/005"}
	seedCSC101(t, store)
	svc := NewService(store, WithConcurrency(1))

	_, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/005", CourseCode: "CSC101", Answers: map[string]string{},
	})
	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StoreError, got %v", err)
	}

	if _, err := svc.SubmitWait(context.Background(), SubmitRequest{
		Matric: "U/2020/006", CourseCode: "CSC101", Answers: map[string]string{},
	}); err != nil {
		t.Fatalf("queue poisoned by store fault: %v", err)
	}
}

func TestSubmit_ManyDistinctPairsAllComplete(t *testing.T) {
	store := NewInMemoryStore()
	seedCSC101(t, store)
	svc := NewService(store, WithConcurrency(3), WithCA(fixedCA(22)))

	const n = 30
	outs := make([]<-chan Outcome, 0, n)
	for i := 0; i < n; i++ {
		outs = append(outs, svc.Submit(context.Background(), SubmitRequest{
			Matric:     fmt.Sprintf("U/2020/1%02d", i),
			CourseCode: "CSC101",
			Answers:    map[string]string{"q1": "a", "q2": "b", "q3": "c"},
		}))
	}
	for i, out := range outs {
		select {
		case o := <-out:
			if o.Err != nil {
				t.Fatalf("submission %d failed: %v", i, o.Err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("submission %d never completed", i)
		}
	}

	results, err := store.ListResults(context.Background(), "CSC101")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != n {
		t.Fatalf("expected %d results, got %d", n, len(results))
	}
}

// faultStore fails the result write for one matric.
type faultStore struct {
	Store
	failResultFor string
}

func (f *faultStore) CreateResult(ctx context.Context, r Result) error {
	if r.Matric == f.failResultFor {
		return errors.New("disk full")
	}
	return f.Store.CreateResult(ctx, r)
}
