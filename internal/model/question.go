package model

import (
	"encoding/json"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TrueFalse"
	QuestionShortAnswer QuestionType = "ShortAnswer"
	QuestionEssay       QuestionType = "Essay"
)

// Option 选择题选项，恰好一个 isCorrect
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// swagger:model Question
type Question struct {
	BaseModel
	ExamID uint         `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	Type   QuestionType `gorm:"size:20;not null" json:"type"`
	Text   string       `gorm:"type:text;not null" json:"text"`
	Marks  int          `gorm:"not null" json:"marks"`

	// 选择题选项（JSON array of Option）
	Options json.RawMessage `gorm:"type:json" json:"options,omitempty"`

	// TrueFalse 规范化为 "true"/"false"，ShortAnswer 存参考答案
	CorrectAnswer string `gorm:"size:255" json:"correctAnswer,omitempty"`

	Explanation string          `gorm:"type:text" json:"explanation"`
	Images      json.RawMessage `gorm:"type:json" json:"images,omitempty"`
	Difficulty  string          `gorm:"size:10;default:'Medium'" json:"difficulty"`
	Tags        json.RawMessage `gorm:"type:json" json:"tags,omitempty"`
	CreatedBy   uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
	IsActive    bool            `gorm:"default:true" json:"isActive"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解析选项数组
func (q *Question) OptionList() []Option {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []Option
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

func (q *Question) SetOptions(opts []Option) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = raw
	return nil
}

// Sanitized 学生作答视图：抹去正确选项标记、参考答案与解析
func (q *Question) Sanitized() Question {
	out := *q
	out.CorrectAnswer = ""
	out.Explanation = ""
	opts := q.OptionList()
	if len(opts) > 0 {
		stripped := make([]Option, len(opts))
		for i, opt := range opts {
			stripped[i] = Option{Text: opt.Text}
		}
		raw, err := json.Marshal(stripped)
		if err == nil {
			out.Options = raw
		}
	}
	return out
}

// CorrectOptionCount 正确选项数，MCQ 的不变量是恰好 1
func (q *Question) CorrectOptionCount() int {
	count := 0
	for _, opt := range q.OptionList() {
		if opt.IsCorrect {
			count++
		}
	}
	return count
}
