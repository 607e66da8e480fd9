package exam

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu          sync.RWMutex
	courses     map[string]Course
	questions   map[string][]Question // course code -> ordered questions
	submissions []Submission
	results     map[string]Result // matric|course -> result
}

// NewInMemoryStore backs unit tests and offline demo mode. Same
// contract as the SQL store, including the unique result insert.
func NewInMemoryStore() Store {
	return &memoryStore{
		courses:   map[string]Course{},
		questions: map[string][]Question{},
		results:   map[string]Result{},
	}
}

func resultKey(matric, courseCode string) string { return matric + "|" + courseCode }

func (m *memoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.Code] = c
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, code string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[code]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (m *memoryStore) ListCourses(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryStore) PutQuestions(_ context.Context, qs []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range qs {
		m.questions[q.CourseCode] = append(m.questions[q.CourseCode], q)
	}
	return nil
}

func (m *memoryStore) QuestionsForCourse(_ context.Context, code string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs, ok := m.questions[code]
	if !ok {
		if _, have := m.courses[code]; !have {
			return nil, ErrCourseNotFound
		}
		return nil, nil
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *memoryStore) StudentQuestions(ctx context.Context, code string) ([]StudentQuestion, error) {
	qs, err := m.QuestionsForCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	out := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		out[i] = q.StudentView()
	}
	return out, nil
}

func (m *memoryStore) CreateSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *memoryStore) CreateResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := resultKey(r.Matric, r.CourseCode)
	if _, exists := m.results[k]; exists {
		return ErrDuplicateResult
	}
	m.results[k] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, matric, courseCode string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[resultKey(matric, courseCode)]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context, courseCode string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if r.CourseCode == courseCode {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matric < out[j].Matric })
	return out, nil
}
