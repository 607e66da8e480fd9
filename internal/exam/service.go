package exam

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/cbt-backend/internal/scoring"
)

// SubmitRequest carries everything needed to score one exam sitting and
// answer the caller.
type SubmitRequest struct {
	Matric      string            `json:"matric"`
	StudentName string            `json:"student_name"`
	Department  string            `json:"department"`
	CourseCode  string            `json:"course_code"`
	Answers     map[string]string `json:"answers"`
}

// Service owns the submission pipeline: admission queue in front,
// validate/dedupe/score/persist behind it.
type Service struct {
	store Store
	queue *Queue
	ca    scoring.CAFunc
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithConcurrency overrides the admission cap.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.queue = NewQueue(n, s.process) }
}

// WithCA overrides the continuous-assessment draw (tests pin it).
func WithCA(ca scoring.CAFunc) Option {
	return func(s *Service) { s.ca = ca }
}

// WithClock overrides time for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		ca:    scoring.NewCA(time.Now().UnixNano()),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	s.queue = NewQueue(DefaultConcurrency, s.process)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit enqueues and returns the outcome channel. The caller reads one
// Outcome from it, eventually; abandoning the channel is safe.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) <-chan Outcome {
	return s.queue.Enqueue(ctx, req)
}

// SubmitWait is Submit for callers that block on the response. If ctx
// ends first the submission still runs to completion; only the response
// is discarded.
func (s *Service) SubmitWait(ctx context.Context, req SubmitRequest) (Result, error) {
	select {
	case out := <-s.Submit(ctx, req):
		return out.Result, out.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// QueueDepth exposes the waiting count for operational monitoring.
func (s *Service) QueueDepth() int { return s.queue.Depth() }

// process runs once per admitted submission, inside a queue slot.
func (s *Service) process(ctx context.Context, req SubmitRequest) (Result, error) {
	if verr := validateSubmission(req); verr != nil {
		return Result{}, verr
	}

	// Early duplicate check: cheap rejection before any writes.
	switch _, err := s.store.GetResult(ctx, req.Matric, req.CourseCode); {
	case err == nil:
		return Result{}, &ConflictError{Matric: req.Matric, CourseCode: req.CourseCode}
	case !errors.Is(err, ErrResultNotFound):
		return Result{}, &StoreError{Op: "check result", Err: err}
	}

	// The course lookup runs before the audit write: a ValidationError
	// promises the caller nothing was persisted.
	questions, err := s.store.QuestionsForCourse(ctx, req.CourseCode)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return Result{}, &ValidationError{Field: "course_code", Reason: "unknown"}
		}
		return Result{}, &StoreError{Op: "load questions", Err: err}
	}

	sub := Submission{
		ID:          s.newID(),
		Matric:      req.Matric,
		StudentName: req.StudentName,
		Department:  req.Department,
		CourseCode:  req.CourseCode,
		Answers:     req.Answers,
		SubmittedAt: s.now(),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return Result{}, &StoreError{Op: "record submission", Err: err}
	}

	qs := make([]scoring.Q, len(questions))
	for i, q := range questions {
		qs[i] = scoring.Q{ID: q.ID, CorrectOption: q.CorrectOption}
	}
	score, total := scoring.Score(qs, req.Answers)

	// The CA score is drawn exactly once here. If the insert below loses
	// the race the draw is discarded with it; the persisted result keeps
	// the winner's draw forever.
	ca := s.ca()
	res := Result{
		Matric:        req.Matric,
		CourseCode:    req.CourseCode,
		Score:         score,
		QuestionTotal: total,
		CAScore:       ca,
		TotalScore:    score + ca,
		CreatedAt:     s.now(),
	}

	// Second idempotency check, enforced by the store's unique insert.
	// Scoring happened between admission and this write, so a racer for
	// the same pair may have committed meanwhile.
	if err := s.store.CreateResult(ctx, res); err != nil {
		if errors.Is(err, ErrDuplicateResult) {
			return Result{}, &ConflictError{Matric: req.Matric, CourseCode: req.CourseCode}
		}
		return Result{}, &StoreError{Op: "record result", Err: err}
	}
	return res, nil
}

func validateSubmission(req SubmitRequest) *ValidationError {
	if req.Matric == "" {
		return &ValidationError{Field: "matric", Reason: "required"}
	}
	if req.CourseCode == "" {
		return &ValidationError{Field: "course_code", Reason: "required"}
	}
	if req.Answers == nil {
		return &ValidationError{Field: "answers", Reason: "required"}
	}
	return nil
}
