package service

import (
	"testing"

	"exam_portal_backend/internal/model"
)

func TestQuestionValidate(t *testing.T) {
	s := &QuestionService{}

	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{
			name: "valid MCQ",
			req: QuestionRequest{Type: model.QuestionMCQ, Options: []model.Option{
				{Text: "A"}, {Text: "B", IsCorrect: true}, {Text: "C"},
			}},
			wantErr: false,
		},
		{
			name:    "MCQ with one option",
			req:     QuestionRequest{Type: model.QuestionMCQ, Options: []model.Option{{Text: "A", IsCorrect: true}}},
			wantErr: true,
		},
		{
			name: "MCQ with no correct option",
			req: QuestionRequest{Type: model.QuestionMCQ, Options: []model.Option{
				{Text: "A"}, {Text: "B"},
			}},
			wantErr: true,
		},
		{
			name: "MCQ with two correct options",
			req: QuestionRequest{Type: model.QuestionMCQ, Options: []model.Option{
				{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true},
			}},
			wantErr: true,
		},
		{
			name:    "valid TrueFalse",
			req:     QuestionRequest{Type: model.QuestionTrueFalse, CorrectAnswer: "true"},
			wantErr: false,
		},
		{
			name:    "TrueFalse with garbage key",
			req:     QuestionRequest{Type: model.QuestionTrueFalse, CorrectAnswer: "yes"},
			wantErr: true,
		},
		{
			name:    "essay needs no key",
			req:     QuestionRequest{Type: model.QuestionEssay},
			wantErr: false,
		},
		{
			name:    "unknown type",
			req:     QuestionRequest{Type: "Matching"},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.validate(&tc.req)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestQuestionValidateNormalizesTrueFalseKey(t *testing.T) {
	s := &QuestionService{}
	req := QuestionRequest{Type: model.QuestionTrueFalse, CorrectAnswer: "  True "}
	if err := s.validate(&req); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.CorrectAnswer != "true" {
		t.Errorf("key stored as %q, want normalized \"true\"", req.CorrectAnswer)
	}
}

func TestQuestionValidateUpdateRejectsTypeChange(t *testing.T) {
	s := &QuestionService{}
	stored := &model.Question{Type: model.QuestionMCQ}

	// 把存量MCQ改成简答题会让带CorrectAnswer的请求按错误的题型校验
	req := QuestionRequest{Type: model.QuestionShortAnswer, CorrectAnswer: "42"}
	if err := s.validateUpdate(stored, &req); err == nil {
		t.Fatal("validateUpdate accepted a type change")
	}

	same := QuestionRequest{Type: model.QuestionMCQ, Options: []model.Option{
		{Text: "A", IsCorrect: true}, {Text: "B"},
	}}
	if err := s.validateUpdate(stored, &same); err != nil {
		t.Fatalf("validateUpdate rejected same-type update: %v", err)
	}
}

func TestAnswerKeyChanged(t *testing.T) {
	s := &QuestionService{}

	mcq := &model.Question{Type: model.QuestionMCQ}
	if err := mcq.SetOptions([]model.Option{{Text: "A", IsCorrect: true}, {Text: "B"}}); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}

	tests := []struct {
		name string
		old  *model.Question
		req  QuestionRequest
		want bool
	}{
		{
			name: "MCQ key moved",
			old:  mcq,
			req:  QuestionRequest{Options: []model.Option{{Text: "A"}, {Text: "B", IsCorrect: true}}},
			want: true,
		},
		{
			name: "MCQ key unchanged despite text edit",
			old:  mcq,
			req:  QuestionRequest{Options: []model.Option{{Text: "A (reworded)", IsCorrect: true}, {Text: "B"}}},
			want: false,
		},
		{
			name: "MCQ options omitted means untouched",
			old:  mcq,
			req:  QuestionRequest{},
			want: false,
		},
		{
			name: "TrueFalse flipped",
			old:  &model.Question{Type: model.QuestionTrueFalse, CorrectAnswer: "true"},
			req:  QuestionRequest{CorrectAnswer: "false"},
			want: true,
		},
		{
			name: "TrueFalse case change is not a key change",
			old:  &model.Question{Type: model.QuestionTrueFalse, CorrectAnswer: "true"},
			req:  QuestionRequest{CorrectAnswer: "TRUE"},
			want: false,
		},
		{
			name: "essay never triggers",
			old:  &model.Question{Type: model.QuestionEssay, CorrectAnswer: "old reference"},
			req:  QuestionRequest{CorrectAnswer: "new reference"},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.answerKeyChanged(tc.old, tc.req); got != tc.want {
				t.Errorf("answerKeyChanged = %v, want %v", got, tc.want)
			}
		})
	}
}
