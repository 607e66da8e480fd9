package exam

import "time"

// Course is the exam metadata keyed by course code.
type Course struct {
	Code          string `json:"code"`
	Title         string `json:"title"`
	DurationSec   int    `json:"duration_sec"`
	QuestionCount int    `json:"question_count"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Question belongs to exactly one course and is immutable once created.
// CorrectOption must never reach an exam-taking client; student-facing
// reads go through StudentView.
type Question struct {
	ID            string `json:"id"`
	CourseCode    string `json:"course_code"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option,omitempty"`
}

// StudentQuestion is the answer-key-free view served to exam takers.
type StudentQuestion struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
}

func (q Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:      q.ID,
		Text:    q.Text,
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
	}
}

// Submission is the write-once audit record of what a student handed in.
type Submission struct {
	ID          string            `json:"id"`
	Matric      string            `json:"matric"`
	StudentName string            `json:"student_name"`
	Department  string            `json:"department"`
	CourseCode  string            `json:"course_code"`
	Answers     map[string]string `json:"answers"` // question id -> option label
	SubmittedAt time.Time         `json:"submitted_at"`
}

// Result is the derived record for one (matric, course) pair. At most
// one exists per pair, ever; the submission path never updates it.
type Result struct {
	Matric        string    `json:"matric"`
	CourseCode    string    `json:"course_code"`
	Score         int       `json:"score"`
	QuestionTotal int       `json:"question_total"`
	CAScore       int       `json:"ca_score"`
	TotalScore    int       `json:"total_score"`
	CreatedAt     time.Time `json:"created_at"`
}
