package exam

import "context"

type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, code string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)

	PutQuestions(ctx context.Context, qs []Question) error
	// QuestionsForCourse returns the full question set including answer
	// keys. Grading-path only; never serve this to an exam taker.
	QuestionsForCourse(ctx context.Context, code string) ([]Question, error)
	// StudentQuestions is the student-safe read (no answer keys).
	StudentQuestions(ctx context.Context, code string) ([]StudentQuestion, error)

	CreateSubmission(ctx context.Context, s Submission) error

	// CreateResult inserts if and only if no result exists for the
	// (matric, course) pair. A losing racer gets ErrDuplicateResult;
	// the stored row is never overwritten.
	CreateResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, matric, courseCode string) (Result, error)
	ListResults(ctx context.Context, courseCode string) ([]Result, error)
}
