package model

import (
	"encoding/json"
	"testing"
)

func TestIsStudentAllowed(t *testing.T) {
	allowed := json.RawMessage(`[3, 7, 12]`)

	tests := []struct {
		name      string
		exam      Exam
		studentID uint
		want      bool
	}{
		{name: "public exam admits anyone", exam: Exam{IsPublic: true}, studentID: 99, want: true},
		{name: "listed student", exam: Exam{AllowedStudents: allowed}, studentID: 7, want: true},
		{name: "unlisted student", exam: Exam{AllowedStudents: allowed}, studentID: 8, want: false},
		{name: "empty list admits nobody", exam: Exam{}, studentID: 1, want: false},
		{name: "malformed list admits nobody", exam: Exam{AllowedStudents: json.RawMessage(`{"oops":1}`)}, studentID: 3, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.exam.IsStudentAllowed(tc.studentID); got != tc.want {
				t.Errorf("IsStudentAllowed(%d) = %v, want %v", tc.studentID, got, tc.want)
			}
		})
	}
}

func TestExamTotalMarks(t *testing.T) {
	questions := []Question{{Marks: 5}, {Marks: 3}, {Marks: 2}}

	mcq := Exam{Type: ExamTypeMCQ}
	if got := mcq.TotalMarks(questions); got != 10 {
		t.Errorf("MCQ total = %d, want 10", got)
	}

	project := Exam{Type: ExamTypeProject, ProjectTotalMarks: 60}
	if got := project.TotalMarks(nil); got != 60 {
		t.Errorf("project total = %d, want stored 60", got)
	}

	projectDefault := Exam{Type: ExamTypeProject}
	if got := projectDefault.TotalMarks(nil); got != 100 {
		t.Errorf("project default total = %d, want 100", got)
	}
}

func TestQuestionSanitized(t *testing.T) {
	q := Question{
		Type:          QuestionMCQ,
		Text:          "1+1=?",
		Marks:         5,
		CorrectAnswer: "should vanish",
		Explanation:   "should vanish too",
	}
	if err := q.SetOptions([]Option{{Text: "1"}, {Text: "2", IsCorrect: true}}); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}

	view := q.Sanitized()

	if view.CorrectAnswer != "" || view.Explanation != "" {
		t.Errorf("sanitized view leaks key: answer=%q explanation=%q", view.CorrectAnswer, view.Explanation)
	}
	for _, opt := range view.OptionList() {
		if opt.IsCorrect {
			t.Errorf("sanitized option still flagged correct: %+v", opt)
		}
	}
	if len(view.OptionList()) != 2 {
		t.Errorf("option texts must survive, got %d", len(view.OptionList()))
	}
	if q.CorrectAnswer == "" {
		t.Error("Sanitized must not mutate the original")
	}
}
