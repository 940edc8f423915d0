package grading

import (
	"strconv"
	"strings"

	"exam_portal_backend/internal/model"
)

// GradedAnswer 自动判分产生的答案条目。未作答的题目不产生条目，
// 只在尝试的题目列表上清零得分。
type GradedAnswer struct {
	QuestionID     uint
	QuestionType   model.QuestionType
	SelectedOption int    // MCQ 选项下标，其他类型为 -1
	AnswerText     string // TrueFalse 规范化值
	IsCorrect      bool
	MarksObtained  int
}

// AttemptGrade 整次尝试的判分产物
type AttemptGrade struct {
	// 仅含已作答且可自动判分（MCQ/TrueFalse）的条目
	Answers []GradedAnswer
	// 每个题目的得分，未作答与人工评阅题为 0
	PerQuestion map[uint]int
	// 自动判分得分合计（新鲜求和）
	TotalMarks int
	// 需要人工评阅的题目（ShortAnswer/Essay 且已作答）
	NeedsManual bool
	// 答案键违反不变量的题目，调用方必须记录
	KeyFaults []uint
}

// GradeAttempt 按捕获的题目快照对一份作答判分。answers 以题目ID为键，
// 值为原始提交串。纯函数，不触存储。
func GradeAttempt(questions []model.Question, answers map[uint]string) AttemptGrade {
	out := AttemptGrade{PerQuestion: make(map[uint]int, len(questions))}

	for i := range questions {
		q := &questions[i]
		submitted := answers[q.ID]

		outcome, err := GradeAnswer(q, submitted)
		if err != nil {
			out.KeyFaults = append(out.KeyFaults, q.ID)
		}
		out.PerQuestion[q.ID] = outcome.MarksObtained

		if !outcome.Answered {
			continue
		}

		switch q.Type {
		case model.QuestionMCQ:
			selected, convErr := strconv.Atoi(strings.TrimSpace(submitted))
			if convErr != nil {
				selected = -1
			}
			out.Answers = append(out.Answers, GradedAnswer{
				QuestionID:     q.ID,
				QuestionType:   q.Type,
				SelectedOption: selected,
				IsCorrect:      outcome.IsCorrect,
				MarksObtained:  outcome.MarksObtained,
			})
			out.TotalMarks += outcome.MarksObtained
		case model.QuestionTrueFalse:
			out.Answers = append(out.Answers, GradedAnswer{
				QuestionID:     q.ID,
				QuestionType:   q.Type,
				SelectedOption: -1,
				AnswerText:     Normalize(submitted),
				IsCorrect:      outcome.IsCorrect,
				MarksObtained:  outcome.MarksObtained,
			})
			out.TotalMarks += outcome.MarksObtained
		case model.QuestionShortAnswer, model.QuestionEssay:
			// 人工评阅，不产生自动判分条目
			out.NeedsManual = true
		}
	}

	return out
}

// RegradeMCQ 答案键变更后的单条目重判
func RegradeMCQ(selectedOption, correctOption, marks int) (bool, int) {
	if selectedOption >= 0 && selectedOption == correctOption {
		return true, marks
	}
	return false, 0
}

// RegradeTrueFalse 答案键变更后的单条目重判
func RegradeTrueFalse(answerText, correctAnswer string, marks int) (bool, int) {
	if answerText != "" && Normalize(answerText) == Normalize(correctAnswer) {
		return true, marks
	}
	return false, 0
}
