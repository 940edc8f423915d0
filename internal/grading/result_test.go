package grading

import (
	"testing"

	"exam_portal_backend/internal/model"
)

func TestGradeLetter(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.9, "A"},
		{80, "A"},
		{75, "B+"},
		{70, "B"},
		{65, "C+"},
		{60, "C"},
		{59.9, "D"},
		{50, "D"},
		{49.9, "F"},
		{0, "F"},
	}
	for _, tc := range tests {
		if got := GradeLetter(tc.percentage); got != tc.want {
			t.Errorf("GradeLetter(%v) = %q, want %q", tc.percentage, got, tc.want)
		}
	}
}

func TestPassingMarks(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{100, 50},
		{99, 50},
		{1, 1},
		{0, 0},
	}
	for _, tc := range tests {
		if got := PassingMarks(tc.total); got != tc.want {
			t.Errorf("PassingMarks(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(5, 0); got != 0 {
		t.Errorf("zero total must yield 0, got %v", got)
	}
	if got := Percentage(5, 10); got != 50 {
		t.Errorf("Percentage(5,10) = %v, want 50", got)
	}
}

func TestPassStatus(t *testing.T) {
	tests := []struct {
		name     string
		obtained int
		total    int
		want     model.ResultStatus
	}{
		{name: "exactly half passes", obtained: 5, total: 10, want: model.ResultPass},
		{name: "below half fails", obtained: 4, total: 10, want: model.ResultFail},
		{name: "odd total half rounds against", obtained: 4, total: 9, want: model.ResultFail},
		{name: "odd total ceil passes", obtained: 5, total: 9, want: model.ResultPass},
		{name: "zero total fails", obtained: 0, total: 0, want: model.ResultFail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PassStatus(tc.obtained, tc.total); got != tc.want {
				t.Errorf("PassStatus(%d, %d) = %v, want %v", tc.obtained, tc.total, got, tc.want)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	answers := []GradedAnswer{
		{QuestionID: 1, QuestionType: model.QuestionMCQ, SelectedOption: 2, IsCorrect: true, MarksObtained: 5},
		{QuestionID: 2, QuestionType: model.QuestionMCQ, SelectedOption: 0, IsCorrect: false, MarksObtained: 0},
	}

	got := Compile(answers, 3, 10, 120, 1)

	if got.ObtainedMarks != 5 {
		t.Errorf("obtained = %d, want 5", got.ObtainedMarks)
	}
	if got.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", got.Percentage)
	}
	if got.Grade != "D" {
		t.Errorf("grade = %q, want D", got.Grade)
	}
	if got.Status != model.ResultPass {
		t.Errorf("status = %v, want PASS", got.Status)
	}
	a := got.Analytics
	if a.CorrectAnswers != 1 || a.IncorrectAnswers != 1 || a.SkippedQuestions != 1 {
		t.Errorf("analytics counts = %d/%d/%d, want 1/1/1", a.CorrectAnswers, a.IncorrectAnswers, a.SkippedQuestions)
	}
	if a.AccuracyRate != 50 {
		t.Errorf("accuracy = %v, want 50 (denominator is answered only)", a.AccuracyRate)
	}
	if a.TimeSpent != 120 || a.AttemptsCount != 1 {
		t.Errorf("time/attempts = %d/%d, want 120/1", a.TimeSpent, a.AttemptsCount)
	}
}

func TestCompileAllSkipped(t *testing.T) {
	got := Compile(nil, 4, 20, 0, 2)

	if got.ObtainedMarks != 0 || got.Percentage != 0 {
		t.Errorf("obtained/percentage = %d/%v, want 0/0", got.ObtainedMarks, got.Percentage)
	}
	if got.Grade != "F" || got.Status != model.ResultFail {
		t.Errorf("grade/status = %q/%v, want F/FAIL", got.Grade, got.Status)
	}
	if got.Analytics.SkippedQuestions != 4 {
		t.Errorf("skipped = %d, want 4", got.Analytics.SkippedQuestions)
	}
	if got.Analytics.AccuracyRate != 0 {
		t.Errorf("accuracy = %v, want 0 when nothing answered", got.Analytics.AccuracyRate)
	}
}
