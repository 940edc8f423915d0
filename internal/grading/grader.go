package grading

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"exam_portal_backend/internal/model"
)

// ErrInvalidAnswerKey 题目答案键损坏（MCQ 正确选项数不为 1）。判分路径
// 会兜底取第一个正确标记的选项继续，但该错误必须上浮记录，不能静默。
var ErrInvalidAnswerKey = errors.New("question answer key violates invariant")

// Outcome 单题判分结果
type Outcome struct {
	Answered      bool
	IsCorrect     bool
	MarksObtained int
}

// Normalize TrueFalse 答案的规范化：去空白 + 小写
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalCorrectOption 返回作为判分依据的正确选项下标。
// 恰好一个正确选项时 err 为 nil；多于一个时取第一个并报
// ErrInvalidAnswerKey；没有正确选项时返回 -1 和错误。
func CanonicalCorrectOption(opts []model.Option) (int, error) {
	first := -1
	count := 0
	for i, opt := range opts {
		if opt.IsCorrect {
			if first < 0 {
				first = i
			}
			count++
		}
	}
	if count == 1 {
		return first, nil
	}
	return first, fmt.Errorf("%w: %d options flagged correct", ErrInvalidAnswerKey, count)
}

// GradeMCQ 提交值为选项下标的十进制串。未作答得 0 且不产生答案条目；
// 无法解析或越界按答错处理。
func GradeMCQ(q *model.Question, submitted string) (Outcome, error) {
	correct, keyErr := CanonicalCorrectOption(q.OptionList())

	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return Outcome{}, keyErr
	}

	selected, err := strconv.Atoi(submitted)
	if err != nil {
		return Outcome{Answered: true}, keyErr
	}

	if correct >= 0 && selected == correct {
		return Outcome{Answered: true, IsCorrect: true, MarksObtained: q.Marks}, keyErr
	}
	return Outcome{Answered: true}, keyErr
}

// GradeTrueFalse 规范化后精确比较，未作答永远算错且不产生答案条目
func GradeTrueFalse(q *model.Question, submitted string) Outcome {
	normalized := Normalize(submitted)
	if normalized == "" {
		return Outcome{}
	}
	if normalized == Normalize(q.CorrectAnswer) {
		return Outcome{Answered: true, IsCorrect: true, MarksObtained: q.Marks}
	}
	return Outcome{Answered: true}
}

// GradeAnswer 按题目类型判分。ShortAnswer/Essay 不自动判分，
// 保持 0 分等待人工评阅。
func GradeAnswer(q *model.Question, submitted string) (Outcome, error) {
	switch q.Type {
	case model.QuestionMCQ:
		return GradeMCQ(q, submitted)
	case model.QuestionTrueFalse:
		return GradeTrueFalse(q, submitted), nil
	case model.QuestionShortAnswer, model.QuestionEssay:
		return Outcome{Answered: strings.TrimSpace(submitted) != ""}, nil
	default:
		return Outcome{}, fmt.Errorf("unknown question type %q", q.Type)
	}
}
