package service

import (
	"exam_portal_backend/internal/grading"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecalcService 答案键变更后的追溯重算引擎。
// 固定顺序重算三层读模型：尝试 → 提交 → 结果。全量重判而非增量修补，
// 因此天然幂等：对同一键重复执行收敛到相同状态。
// 原子性以单条记录为界，中途失败重跑即可补齐。
type RecalcService struct {
	AttemptRepo    *repository.AttemptRepository
	SubmissionRepo *repository.SubmissionRepository
	ResultRepo     *repository.ResultRepository
	Stats          *StatisticsService
	DB             *gorm.DB
}

func NewRecalcService(
	attemptRepo *repository.AttemptRepository,
	submissionRepo *repository.SubmissionRepository,
	resultRepo *repository.ResultRepository,
	stats *StatisticsService,
	db *gorm.DB,
) *RecalcService {
	return &RecalcService{
		AttemptRepo:    attemptRepo,
		SubmissionRepo: submissionRepo,
		ResultRepo:     resultRepo,
		Stats:          stats,
		DB:             db,
	}
}

// OnAnswerKeyChanged 对包含该题的全部已提交尝试、提交和结果重判。
// 仅 MCQ 与 TrueFalse 可自动重判，其他类型为人工评分，键无意义。
func (s *RecalcService) OnAnswerKeyChanged(q *model.Question) error {
	if q.Type != model.QuestionMCQ && q.Type != model.QuestionTrueFalse {
		return nil
	}

	correctOption := -1
	if q.Type == model.QuestionMCQ {
		idx, err := grading.CanonicalCorrectOption(q.OptionList())
		if err != nil {
			// 兜底取第一个正确标记继续重算，但必须上浮记录
			logger.Log.Error("answer key integrity fault during recalculation",
				zap.Uint("questionId", q.ID), zap.Error(err))
		}
		correctOption = idx
	}

	if err := s.recalcAttempts(q, correctOption); err != nil {
		return err
	}
	if err := s.recalcSubmissions(q, correctOption); err != nil {
		return err
	}
	if err := s.recalcResults(q); err != nil {
		return err
	}

	monitoring.RecalculationRuns.WithLabelValues(string(q.Type)).Inc()
	if s.Stats != nil {
		s.Stats.InvalidateExam(q.ExamID)
	}
	logger.Log.Info("answer key recalculation completed",
		zap.Uint("questionId", q.ID), zap.String("type", string(q.Type)))
	return nil
}

func (s *RecalcService) regradeEntry(q *model.Question, correctOption int, selected int, answerText string) (bool, int) {
	switch q.Type {
	case model.QuestionMCQ:
		return grading.RegradeMCQ(selected, correctOption, q.Marks)
	case model.QuestionTrueFalse:
		return grading.RegradeTrueFalse(answerText, q.CorrectAnswer, q.Marks)
	}
	return false, 0
}

func (s *RecalcService) recalcAttempts(q *model.Question, correctOption int) error {
	attempts, err := s.AttemptRepo.FindSubmittedByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range attempts {
		attempt := &attempts[i]
		changed := false
		total := 0
		for j := range attempt.Questions {
			entry := &attempt.Questions[j]
			if entry.QuestionID == q.ID && entry.Answer != "" {
				var selected int
				if q.Type == model.QuestionMCQ {
					selected = parseOptionIndex(entry.Answer)
				}
				_, marks := s.regradeEntry(q, correctOption, selected, entry.Answer)
				if entry.Marks != marks {
					entry.Marks = marks
					changed = true
				}
			}
			total += entry.Marks
		}
		if !changed && attempt.TotalMarks == total {
			continue
		}
		attempt.TotalMarks = total
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for j := range attempt.Questions {
				if err := tx.Save(&attempt.Questions[j]).Error; err != nil {
					return err
				}
			}
			return tx.Model(&model.ExamAttempt{}).Where("id = ?", attempt.ID).
				Update("total_marks", attempt.TotalMarks).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *RecalcService) recalcSubmissions(q *model.Question, correctOption int) error {
	subs, err := s.SubmissionRepo.FindByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range subs {
		sub := &subs[i]
		changed := false
		for j := range sub.Answers {
			entry := &sub.Answers[j]
			if entry.QuestionID != q.ID {
				continue
			}
			isCorrect, marks := s.regradeEntry(q, correctOption, entry.SelectedOption, entry.AnswerText)
			if entry.IsCorrect != isCorrect || entry.MarksObtained != marks {
				entry.IsCorrect = isCorrect
				entry.MarksObtained = marks
				changed = true
			}
		}
		total := sub.SumAnswerMarks()
		if !changed && sub.TotalMarksObtained == total {
			continue
		}
		sub.TotalMarksObtained = total
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for j := range sub.Answers {
				if err := tx.Save(&sub.Answers[j]).Error; err != nil {
					return err
				}
			}
			return tx.Model(&model.Submission{}).Where("id = ?", sub.ID).
				Update("total_marks_obtained", sub.TotalMarksObtained).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// recalcResults 从重算后的提交条目拷贝单题得分，再整体重推导
// 百分比与通过状态。等级字母保持历史值不动。
func (s *RecalcService) recalcResults(q *model.Question) error {
	results, err := s.ResultRepo.FindByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range results {
		result := &results[i]
		sub, err := s.SubmissionRepo.FindByID(result.SubmissionID)
		if err != nil {
			logger.Log.Warn("result references missing submission, skipped",
				zap.Uint("resultId", result.ID), zap.Uint("submissionId", result.SubmissionID))
			continue
		}
		var graded *model.SubmissionAnswer
		for j := range sub.Answers {
			if sub.Answers[j].QuestionID == q.ID {
				graded = &sub.Answers[j]
				break
			}
		}
		if graded == nil {
			continue
		}

		changed := false
		for j := range result.QuestionResults {
			entry := &result.QuestionResults[j]
			if entry.QuestionID != q.ID {
				continue
			}
			if entry.ObtainedMarks != graded.MarksObtained || entry.IsCorrect != graded.IsCorrect {
				entry.ObtainedMarks = graded.MarksObtained
				entry.IsCorrect = graded.IsCorrect
				changed = true
			}
		}
		obtained := result.SumQuestionMarks()
		if !changed && result.ObtainedMarks == obtained {
			continue
		}
		result.ObtainedMarks = obtained
		result.Percentage = grading.Percentage(obtained, result.TotalMarks)
		result.Status = grading.PassStatus(obtained, result.TotalMarks)

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			for j := range result.QuestionResults {
				if err := tx.Save(&result.QuestionResults[j]).Error; err != nil {
					return err
				}
			}
			return tx.Model(&model.Result{}).Where("id = ?", result.ID).
				Updates(map[string]interface{}{
					"obtained_marks": result.ObtainedMarks,
					"percentage":     result.Percentage,
					"status":         result.Status,
				}).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// OnQuestionDeleted 从三层读模型中摘除该题条目并整体重算总分
func (s *RecalcService) OnQuestionDeleted(q *model.Question) error {
	attempts, err := s.AttemptRepo.FindSubmittedByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range attempts {
		attempt := &attempts[i]
		if err := s.AttemptRepo.DeleteQuestionEntries(attempt.ID, q.ID); err != nil {
			return err
		}
		total := 0
		for _, entry := range attempt.Questions {
			if entry.QuestionID != q.ID {
				total += entry.Marks
			}
		}
		if err := s.DB.Model(&model.ExamAttempt{}).Where("id = ?", attempt.ID).
			Update("total_marks", total).Error; err != nil {
			return err
		}
	}
	// 未提交尝试的快照条目也一并摘除
	if err := s.AttemptRepo.DeleteEntriesByQuestion(q.ID); err != nil {
		return err
	}

	subs, err := s.SubmissionRepo.FindByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range subs {
		sub := &subs[i]
		total := 0
		for _, entry := range sub.Answers {
			if entry.QuestionID != q.ID {
				total += entry.MarksObtained
			}
		}
		if err := s.DB.Model(&model.Submission{}).Where("id = ?", sub.ID).
			Update("total_marks_obtained", total).Error; err != nil {
			return err
		}
	}
	if err := s.SubmissionRepo.DeleteAnswersByQuestion(q.ID); err != nil {
		return err
	}

	results, err := s.ResultRepo.FindByQuestion(q.ID)
	if err != nil {
		return err
	}
	for i := range results {
		result := &results[i]
		obtained := 0
		total := 0
		for _, entry := range result.QuestionResults {
			if entry.QuestionID != q.ID {
				obtained += entry.ObtainedMarks
				total += entry.TotalMarks
			}
		}
		err := s.DB.Model(&model.Result{}).Where("id = ?", result.ID).
			Updates(map[string]interface{}{
				"obtained_marks": obtained,
				"total_marks":    total,
				"percentage":     grading.Percentage(obtained, total),
				"status":         grading.PassStatus(obtained, total),
			}).Error
		if err != nil {
			return err
		}
	}
	if err := s.ResultRepo.DeleteQuestionEntriesByQuestion(q.ID); err != nil {
		return err
	}

	if s.Stats != nil {
		s.Stats.InvalidateExam(q.ExamID)
	}
	logger.Log.Info("question removed from graded records",
		zap.Uint("questionId", q.ID), zap.Uint("examId", q.ExamID))
	return nil
}
