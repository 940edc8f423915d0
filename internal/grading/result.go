package grading

import (
	"math"

	"exam_portal_backend/internal/model"
)

// GradeLetter 百分比到等级的固定分段
func GradeLetter(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 75:
		return "B+"
	case percentage >= 70:
		return "B"
	case percentage >= 65:
		return "C+"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

// PassingMarks MCQ 通过线：总分的 50% 向上取整。
// 项目型考试的通过判定另以此为通过线，与 PassStatus 的取整方向不同。
func PassingMarks(total int) int {
	return int(math.Ceil(float64(total) * 0.5))
}

// Percentage 除零保护
func Percentage(obtained, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(obtained) / float64(total) * 100
}

// PassStatus 得分达到总分一半即通过（恰好 50% 算通过）
func PassStatus(obtained, total int) model.ResultStatus {
	if total > 0 && obtained*2 >= total {
		return model.ResultPass
	}
	return model.ResultFail
}

// CompiledResult 由 Submission 推导出的结果字段，
// percentage/grade/status 永远一起重算
type CompiledResult struct {
	ObtainedMarks int
	Percentage    float64
	Grade         string
	Status        model.ResultStatus
	Analytics     model.ResultAnalytics
}

// Compile 从判分条目推导结果。skipped = 总题数 - 已作答数；
// accuracy 的分母只含已作答题目，除零取 0。
func Compile(answers []GradedAnswer, totalQuestions, totalMarks, timeSpentSec, attemptNumber int) CompiledResult {
	obtained := 0
	correct := 0
	for _, a := range answers {
		obtained += a.MarksObtained
		if a.IsCorrect {
			correct++
		}
	}
	incorrect := len(answers) - correct

	accuracy := 0.0
	if len(answers) > 0 {
		accuracy = float64(correct) / float64(len(answers)) * 100
	}

	return CompiledResult{
		ObtainedMarks: obtained,
		Percentage:    Percentage(obtained, totalMarks),
		Grade:         GradeLetter(Percentage(obtained, totalMarks)),
		Status:        PassStatus(obtained, totalMarks),
		Analytics: model.ResultAnalytics{
			TimeSpent:        timeSpentSec,
			AttemptsCount:    attemptNumber,
			CorrectAnswers:   correct,
			IncorrectAnswers: incorrect,
			SkippedQuestions: totalQuestions - len(answers),
			AccuracyRate:     accuracy,
		},
	}
}
