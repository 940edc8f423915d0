package grading

import (
	"testing"

	"exam_portal_backend/internal/model"
)

func attemptQuestions(t *testing.T) []model.Question {
	t.Helper()
	mcq := mcqQuestion(t, 5, 1)
	mcq.ID = 1
	tf := &model.Question{Type: model.QuestionTrueFalse, Marks: 3, CorrectAnswer: "false"}
	tf.ID = 2
	essay := &model.Question{Type: model.QuestionEssay, Marks: 10}
	essay.ID = 3
	return []model.Question{*mcq, *tf, *essay}
}

func TestGradeAttempt(t *testing.T) {
	questions := attemptQuestions(t)

	grade := GradeAttempt(questions, map[uint]string{
		1: "1",
		2: "True",
		3: "my essay",
	})

	if len(grade.Answers) != 2 {
		t.Fatalf("auto-graded entries = %d, want 2 (essay handled manually)", len(grade.Answers))
	}
	if grade.TotalMarks != 5 {
		t.Errorf("total = %d, want 5 (MCQ correct, TrueFalse wrong)", grade.TotalMarks)
	}
	if !grade.NeedsManual {
		t.Error("answered essay must flag manual review")
	}
	if len(grade.KeyFaults) != 0 {
		t.Errorf("unexpected key faults: %v", grade.KeyFaults)
	}

	if grade.PerQuestion[1] != 5 || grade.PerQuestion[2] != 0 || grade.PerQuestion[3] != 0 {
		t.Errorf("per-question marks = %v, want {1:5 2:0 3:0}", grade.PerQuestion)
	}

	mcqEntry := grade.Answers[0]
	if mcqEntry.SelectedOption != 1 || !mcqEntry.IsCorrect {
		t.Errorf("MCQ entry = %+v, want selected=1 correct", mcqEntry)
	}
	tfEntry := grade.Answers[1]
	if tfEntry.SelectedOption != -1 || tfEntry.AnswerText != "true" || tfEntry.IsCorrect {
		t.Errorf("TrueFalse entry = %+v, want normalized text and incorrect", tfEntry)
	}
}

func TestGradeAttemptUnanswered(t *testing.T) {
	questions := attemptQuestions(t)

	grade := GradeAttempt(questions, map[uint]string{1: "", 2: "   "})

	if len(grade.Answers) != 0 {
		t.Errorf("unanswered questions must not produce entries, got %d", len(grade.Answers))
	}
	if grade.TotalMarks != 0 {
		t.Errorf("total = %d, want 0", grade.TotalMarks)
	}
	if grade.NeedsManual {
		t.Error("unanswered essay must not flag manual review")
	}
	for id, marks := range grade.PerQuestion {
		if marks != 0 {
			t.Errorf("question %d marks = %d, want 0", id, marks)
		}
	}
	if len(grade.PerQuestion) != 3 {
		t.Errorf("every snapshot question gets a zeroed score, got %d entries", len(grade.PerQuestion))
	}
}

func TestGradeAttemptReportsKeyFaults(t *testing.T) {
	broken := mcqQuestion(t, 5) // no option flagged correct
	broken.ID = 7

	grade := GradeAttempt([]model.Question{*broken}, map[uint]string{7: "0"})

	if len(grade.KeyFaults) != 1 || grade.KeyFaults[0] != 7 {
		t.Fatalf("key faults = %v, want [7]", grade.KeyFaults)
	}
	if grade.TotalMarks != 0 {
		t.Errorf("broken key must not award marks, got %d", grade.TotalMarks)
	}
}

func TestRegradeMCQ(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		correct  int
		correctR bool
		marks    int
	}{
		{name: "match", selected: 2, correct: 2, correctR: true, marks: 5},
		{name: "mismatch", selected: 1, correct: 2, correctR: false, marks: 0},
		{name: "unparseable sentinel never matches", selected: -1, correct: -1, correctR: false, marks: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotCorrect, gotMarks := RegradeMCQ(tc.selected, tc.correct, 5)
			if gotCorrect != tc.correctR || gotMarks != tc.marks {
				t.Errorf("got (%v, %d), want (%v, %d)", gotCorrect, gotMarks, tc.correctR, tc.marks)
			}
		})
	}
}

func TestRegradeTrueFalse(t *testing.T) {
	if ok, marks := RegradeTrueFalse("true", "True", 3); !ok || marks != 3 {
		t.Errorf("normalized match: got (%v, %d)", ok, marks)
	}
	if ok, marks := RegradeTrueFalse("false", "true", 3); ok || marks != 0 {
		t.Errorf("mismatch: got (%v, %d)", ok, marks)
	}
	if ok, _ := RegradeTrueFalse("", "true", 3); ok {
		t.Error("empty stored text must never regrade as correct")
	}
}

// Regrading with a changed key and then back must reproduce the original
// grades. The recalculation path relies on this convergence.
func TestRegradeRoundTrip(t *testing.T) {
	q := mcqQuestion(t, 5, 1)
	q.ID = 1

	grade := GradeAttempt([]model.Question{*q}, map[uint]string{1: "1"})
	entry := grade.Answers[0]

	// key moves to option 3, then back to 1
	ok, marks := RegradeMCQ(entry.SelectedOption, 3, q.Marks)
	if ok || marks != 0 {
		t.Fatalf("after key change: got (%v, %d), want (false, 0)", ok, marks)
	}
	ok, marks = RegradeMCQ(entry.SelectedOption, 1, q.Marks)
	if ok != entry.IsCorrect || marks != entry.MarksObtained {
		t.Errorf("round trip diverged: got (%v, %d), want (%v, %d)", ok, marks, entry.IsCorrect, entry.MarksObtained)
	}
}
