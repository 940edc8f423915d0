package service

import (
	"errors"
	"time"

	"exam_portal_backend/internal/grading"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type ResultService struct {
	ResultRepo *repository.ResultRepository
	ExamRepo   *repository.ExamRepository
	Notifier   *NotificationService
}

func NewResultService(resultRepo *repository.ResultRepository, examRepo *repository.ExamRepository, notifier *NotificationService) *ResultService {
	return &ResultService{
		ResultRepo: resultRepo,
		ExamRepo:   examRepo,
		Notifier:   notifier,
	}
}

// CompileForSubmission 由提交记录整体推导结果：百分比、等级、通过状态
// 与分析块一起重算，绝不单独修补其中一项。结果与提交一对一，
// 重复编译更新既有记录。计算与发布解耦，这里不改 isReleased。
func (s *ResultService) CompileForSubmission(exam *model.Exam, sub *model.Submission, questions []model.Question, timeSpentSec int) (*model.Result, error) {
	totalMarks := exam.TotalMarks(questions)

	answers := make([]grading.GradedAnswer, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		answers = append(answers, grading.GradedAnswer{
			QuestionID:     a.QuestionID,
			QuestionType:   a.QuestionType,
			SelectedOption: a.SelectedOption,
			AnswerText:     a.AnswerText,
			IsCorrect:      a.IsCorrect,
			MarksObtained:  a.MarksObtained,
		})
	}
	compiled := grading.Compile(answers, len(questions), totalMarks, timeSpentSec, sub.AttemptNumber)

	result, err := s.ResultRepo.FindBySubmission(sub.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = &model.Result{
			ExamID:       exam.ID,
			StudentID:    sub.StudentID,
			SubmissionID: sub.ID,
		}
		if err := s.ResultRepo.Create(result); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	marksByQuestion := make(map[uint]int, len(questions))
	for _, q := range questions {
		marksByQuestion[q.ID] = q.Marks
	}
	entries := make([]model.ResultQuestion, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		entries = append(entries, model.ResultQuestion{
			ResultID:      result.ID,
			QuestionID:    a.QuestionID,
			ObtainedMarks: a.MarksObtained,
			TotalMarks:    marksByQuestion[a.QuestionID],
			IsCorrect:     a.IsCorrect,
			TimeTaken:     a.TimeSpent,
		})
	}
	if err := s.ResultRepo.ReplaceQuestionResults(result.ID, entries); err != nil {
		return nil, err
	}

	result.TotalMarks = totalMarks
	result.ObtainedMarks = compiled.ObtainedMarks
	result.Percentage = compiled.Percentage
	result.Grade = compiled.Grade
	result.Status = compiled.Status
	result.Analytics = compiled.Analytics
	result.QuestionResults = entries
	if sub.Status != model.SubmissionGraded {
		result.Status = model.ResultPendingReview
	}
	if err := s.ResultRepo.Update(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyQuestionFeedback 把人工评阅的单题评语写到结果明细上。
// 评语不参与任何得分推导，单独落盘即可。
func (s *ResultService) ApplyQuestionFeedback(result *model.Result, feedback map[uint]string) error {
	for i := range result.QuestionResults {
		entry := &result.QuestionResults[i]
		text, ok := feedback[entry.QuestionID]
		if !ok || text == "" {
			continue
		}
		entry.Feedback = text
		if err := s.ResultRepo.UpdateQuestionResult(entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResultService) GetResult(id uint) (*model.Result, error) {
	result, err := s.ResultRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	return result, err
}

func (s *ResultService) GetBySubmission(submissionID uint) (*model.Result, error) {
	result, err := s.ResultRepo.FindBySubmission(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	return result, err
}

// GetStudentResult 学生视角：未发布的结果不可见，展示粒度由考试配置决定
func (s *ResultService) GetStudentResult(studentID, resultID uint) (*model.Result, error) {
	result, err := s.GetResult(resultID)
	if err != nil {
		return nil, err
	}
	if result.StudentID != studentID {
		return nil, util.Authorizationf("result belongs to another student")
	}
	if !result.IsReleased {
		return nil, util.ErrResultNotFound
	}

	exam, err := s.ExamRepo.FindByID(result.ExamID)
	if err != nil {
		return nil, err
	}
	switch exam.ResultDisplayOption {
	case model.HideResults:
		return nil, util.ErrResultNotFound
	case model.ShowScoreOnly:
		trimmed := *result
		trimmed.QuestionResults = nil
		trimmed.Analytics = model.ResultAnalytics{}
		trimmed.Feedback = ""
		return &trimmed, nil
	}
	return result, nil
}

func (s *ResultService) ReleaseResult(resultID uint, evaluatorID uint) (*model.Result, error) {
	result, err := s.GetResult(resultID)
	if err != nil {
		return nil, err
	}
	if result.IsReleased {
		return result, nil
	}
	now := time.Now()
	result.IsReleased = true
	result.PublishedAt = &now
	result.EvaluatedBy = &evaluatorID
	result.EvaluatedAt = &now
	if err := s.ResultRepo.Update(result); err != nil {
		return nil, err
	}

	s.Notifier.Notify(result.StudentID, &evaluatorID, model.NotifyResultReleased,
		"Result released", "Your exam result is now available",
		map[string]interface{}{"resultId": result.ID, "examId": result.ExamID})
	return result, nil
}

// ReleaseAllForExam 批量发布某场考试的全部结果
func (s *ResultService) ReleaseAllForExam(examID uint, evaluatorID uint) (int, error) {
	released := 0
	page := 1
	for {
		results, total, err := s.ResultRepo.ListByExam(examID, page, 100)
		if err != nil {
			return released, err
		}
		for i := range results {
			if results[i].IsReleased {
				continue
			}
			if _, err := s.ReleaseResult(results[i].ID, evaluatorID); err != nil {
				return released, err
			}
			released++
		}
		if page*100 >= total {
			break
		}
		page++
	}
	return released, nil
}

func (s *ResultService) ListByExam(examID uint, page, limit int) ([]model.Result, int, error) {
	return s.ResultRepo.ListByExam(examID, page, limit)
}

func (s *ResultService) ListByStudent(studentID uint, releasedOnly bool, page, limit int) ([]model.Result, int, error) {
	return s.ResultRepo.ListByStudent(studentID, releasedOnly, page, limit)
}

func (s *ResultService) ListByDepartment(departmentID uint, page, limit int) ([]model.Result, int, error) {
	return s.ResultRepo.ListByDepartment(departmentID, page, limit)
}
