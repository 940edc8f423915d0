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

type SubmissionService struct {
	SubmissionRepo *repository.SubmissionRepository
}

func NewSubmissionService(submissionRepo *repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{SubmissionRepo: submissionRepo}
}

// SubmitMeta 提交时采集的客户端上下文
type SubmitMeta struct {
	IPAddress   string
	BrowserInfo string
	IsLate      bool
}

// UpsertFromAttempt 以 (examId, studentId, attemptNumber) 为键查找或新建，
// 重复提交同一尝试时整体替换答案条目而不是追加，保证幂等。
func (s *SubmissionService) UpsertFromAttempt(exam *model.Exam, attempt *model.ExamAttempt, grade grading.AttemptGrade, meta SubmitMeta) (*model.Submission, error) {
	now := time.Now()

	sub, err := s.SubmissionRepo.FindByCompoundKey(exam.ID, attempt.StudentID, attempt.AttemptNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = &model.Submission{
			ExamID:         exam.ID,
			StudentID:      attempt.StudentID,
			AttemptNumber:  attempt.AttemptNumber,
			SubmissionType: exam.Type,
			StartedAt:      &attempt.StartTime,
		}
		if err := s.SubmissionRepo.Create(sub); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	status := model.SubmissionGraded
	if grade.NeedsManual {
		status = model.SubmissionSubmitted
	}

	answers := make([]model.SubmissionAnswer, 0, len(grade.Answers))
	for _, a := range grade.Answers {
		answers = append(answers, model.SubmissionAnswer{
			SubmissionID:   sub.ID,
			QuestionID:     a.QuestionID,
			QuestionType:   a.QuestionType,
			SelectedOption: a.SelectedOption,
			AnswerText:     a.AnswerText,
			IsCorrect:      a.IsCorrect,
			MarksObtained:  a.MarksObtained,
		})
	}
	if err := s.SubmissionRepo.ReplaceAnswers(sub.ID, answers); err != nil {
		return nil, err
	}

	sub.Status = status
	sub.SubmittedAt = &now
	sub.CompletedAt = &now
	sub.IPAddress = meta.IPAddress
	sub.BrowserInfo = meta.BrowserInfo
	sub.IsLate = meta.IsLate
	sub.Answers = answers
	sub.TotalMarksObtained = sub.SumAnswerMarks()
	if err := s.SubmissionRepo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ManualScore 人工评阅的单题给分
type ManualScore struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Marks      int    `json:"marks"`
	AnswerText string `json:"-"`
	Feedback   string `json:"feedback"`
}

// ApplyManualScores 人工给分写入对应条目；人工评阅题在自动判分时
// 不产生条目，此处补建。总分随后整体重算。
func (s *SubmissionService) ApplyManualScores(sub *model.Submission, questions map[uint]*model.Question, scores []ManualScore) error {
	for _, score := range scores {
		q, ok := questions[score.QuestionID]
		if !ok {
			continue
		}
		// 给分钳制在 [0, 题目满分]
		marks := score.Marks
		if marks < 0 {
			marks = 0
		}
		if marks > q.Marks {
			marks = q.Marks
		}

		var entry *model.SubmissionAnswer
		for j := range sub.Answers {
			if sub.Answers[j].QuestionID == score.QuestionID {
				entry = &sub.Answers[j]
				break
			}
		}
		if entry == nil {
			sub.Answers = append(sub.Answers, model.SubmissionAnswer{
				SubmissionID:   sub.ID,
				QuestionID:     score.QuestionID,
				QuestionType:   q.Type,
				SelectedOption: -1,
				AnswerText:     score.AnswerText,
			})
			entry = &sub.Answers[len(sub.Answers)-1]
		}
		entry.MarksObtained = marks
		entry.IsCorrect = marks == q.Marks
		if err := s.SubmissionRepo.UpdateAnswer(entry); err != nil {
			return err
		}
	}

	sub.TotalMarksObtained = sub.SumAnswerMarks()
	sub.Status = model.SubmissionGraded
	return s.SubmissionRepo.Update(sub)
}

func (s *SubmissionService) GetSubmission(id uint) (*model.Submission, error) {
	sub, err := s.SubmissionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}

func (s *SubmissionService) FindByCompoundKey(examID, studentID uint, attemptNumber int) (*model.Submission, error) {
	sub, err := s.SubmissionRepo.FindByCompoundKey(examID, studentID, attemptNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}

func (s *SubmissionService) ListByExam(examID uint, page, limit int) ([]model.Submission, int, error) {
	return s.SubmissionRepo.ListByExam(examID, page, limit)
}

func (s *SubmissionService) ListByStudent(studentID uint, page, limit int) ([]model.Submission, int, error) {
	return s.SubmissionRepo.ListByStudent(studentID, page, limit)
}
