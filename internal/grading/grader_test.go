package grading

import (
	"errors"
	"testing"

	"exam_portal_backend/internal/model"
)

func mcqQuestion(t *testing.T, marks int, correct ...int) *model.Question {
	t.Helper()
	correctSet := make(map[int]bool, len(correct))
	for _, i := range correct {
		correctSet[i] = true
	}
	opts := make([]model.Option, 4)
	for i := range opts {
		opts[i] = model.Option{Text: string(rune('A' + i)), IsCorrect: correctSet[i]}
	}
	q := &model.Question{Type: model.QuestionMCQ, Marks: marks}
	if err := q.SetOptions(opts); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	return q
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"true", "true"},
		{"True", "true"},
		{"  TRUE  ", "true"},
		{"False\t", "false"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalCorrectOption(t *testing.T) {
	tests := []struct {
		name    string
		correct []int
		want    int
		wantErr bool
	}{
		{name: "exactly one", correct: []int{2}, want: 2, wantErr: false},
		{name: "first of several wins", correct: []int{1, 3}, want: 1, wantErr: true},
		{name: "none flagged", correct: nil, want: -1, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mcqQuestion(t, 5, tc.correct...)
			got, err := CanonicalCorrectOption(q.OptionList())
			if got != tc.want {
				t.Errorf("got index %d, want %d", got, tc.want)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidAnswerKey) {
				t.Errorf("expected ErrInvalidAnswerKey, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGradeMCQ(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		answered  bool
		isCorrect bool
		marks     int
	}{
		{name: "correct index", submitted: "2", answered: true, isCorrect: true, marks: 5},
		{name: "wrong index", submitted: "0", answered: true, isCorrect: false, marks: 0},
		{name: "unanswered", submitted: "", answered: false, isCorrect: false, marks: 0},
		{name: "whitespace only is unanswered", submitted: "   ", answered: false, isCorrect: false, marks: 0},
		{name: "unparseable counts as wrong", submitted: "abc", answered: true, isCorrect: false, marks: 0},
		{name: "out of range counts as wrong", submitted: "9", answered: true, isCorrect: false, marks: 0},
		{name: "negative counts as wrong", submitted: "-1", answered: true, isCorrect: false, marks: 0},
	}
	q := mcqQuestion(t, 5, 2)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GradeMCQ(q, tc.submitted)
			if err != nil {
				t.Fatalf("unexpected key error: %v", err)
			}
			if got.Answered != tc.answered || got.IsCorrect != tc.isCorrect || got.MarksObtained != tc.marks {
				t.Errorf("got %+v, want answered=%v correct=%v marks=%d", got, tc.answered, tc.isCorrect, tc.marks)
			}
		})
	}
}

func TestGradeMCQFaultyKeyFallsBackToFirst(t *testing.T) {
	q := mcqQuestion(t, 5, 1, 3)

	got, err := GradeMCQ(q, "1")
	if !errors.Is(err, ErrInvalidAnswerKey) {
		t.Fatalf("expected ErrInvalidAnswerKey, got %v", err)
	}
	if !got.IsCorrect || got.MarksObtained != 5 {
		t.Errorf("first flagged option should grade correct, got %+v", got)
	}

	got, _ = GradeMCQ(q, "3")
	if got.IsCorrect {
		t.Errorf("second flagged option must not grade correct, got %+v", got)
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := &model.Question{Type: model.QuestionTrueFalse, Marks: 3, CorrectAnswer: "true"}

	tests := []struct {
		name      string
		submitted string
		answered  bool
		isCorrect bool
		marks     int
	}{
		{name: "exact match", submitted: "true", answered: true, isCorrect: true, marks: 3},
		{name: "case and space normalized", submitted: "  True ", answered: true, isCorrect: true, marks: 3},
		{name: "wrong", submitted: "false", answered: true, isCorrect: false, marks: 0},
		{name: "unanswered", submitted: "", answered: false, isCorrect: false, marks: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GradeTrueFalse(q, tc.submitted)
			if got.Answered != tc.answered || got.IsCorrect != tc.isCorrect || got.MarksObtained != tc.marks {
				t.Errorf("got %+v, want answered=%v correct=%v marks=%d", got, tc.answered, tc.isCorrect, tc.marks)
			}
		})
	}
}

func TestGradeAnswerManualTypesStayZero(t *testing.T) {
	for _, typ := range []model.QuestionType{model.QuestionShortAnswer, model.QuestionEssay} {
		q := &model.Question{Type: typ, Marks: 10, CorrectAnswer: "reference"}

		got, err := GradeAnswer(q, "a long written answer")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", typ, err)
		}
		if !got.Answered || got.IsCorrect || got.MarksObtained != 0 {
			t.Errorf("%s: manual type must hold zero marks, got %+v", typ, got)
		}

		got, _ = GradeAnswer(q, "")
		if got.Answered {
			t.Errorf("%s: empty answer must not count as answered", typ)
		}
	}
}

func TestGradeAnswerUnknownType(t *testing.T) {
	q := &model.Question{Type: "Matching", Marks: 5}
	if _, err := GradeAnswer(q, "x"); err == nil {
		t.Error("expected error for unknown question type")
	}
}
