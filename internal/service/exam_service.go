package service

import (
	"encoding/json"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo       *repository.ExamRepository
	QuestionRepo   *repository.QuestionRepository
	AttemptRepo    *repository.AttemptRepository
	SubmissionRepo *repository.SubmissionRepository
	ResultRepo     *repository.ResultRepository
	Notifier       *NotificationService
}

func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	submissionRepo *repository.SubmissionRepository,
	resultRepo *repository.ResultRepository,
	notifier *NotificationService,
) *ExamService {
	return &ExamService{
		ExamRepo:       examRepo,
		QuestionRepo:   questionRepo,
		AttemptRepo:    attemptRepo,
		SubmissionRepo: submissionRepo,
		ResultRepo:     resultRepo,
		Notifier:       notifier,
	}
}

type ExamCreateRequest struct {
	Title               string                    `json:"title" binding:"required"`
	Description         string                    `json:"description"`
	Type                model.ExamType            `json:"type" binding:"required"`
	ProjectTotalMarks   int                       `json:"projectTotalMarks"`
	Duration            int                       `json:"duration" binding:"required,min=1"`
	StartDate           time.Time                 `json:"startDate" binding:"required"`
	EndDate             time.Time                 `json:"endDate" binding:"required"`
	DepartmentID        uint                      `json:"departmentId"`
	IsPublic            bool                      `json:"isPublic"`
	AllowedStudents     []uint                    `json:"allowedStudents"`
	ShuffleQuestions    *bool                     `json:"shuffleQuestions"`
	ResultDisplayOption model.ResultDisplayOption `json:"resultDisplayOption"`
	Instructions        string                    `json:"instructions"`
	MaxAttempts         int                       `json:"maxAttempts"`
}

func (s *ExamService) CreateExam(creatorID uint, req ExamCreateRequest) (*model.Exam, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, util.Validationf("endDate must be after startDate")
	}
	if req.Type != model.ExamTypeMCQ && req.Type != model.ExamTypeProject && req.Type != model.ExamTypeMixed {
		return nil, util.Validationf("unknown exam type %q", req.Type)
	}
	if !req.IsPublic && len(req.AllowedStudents) == 0 {
		return nil, util.Validationf("non-public exam requires allowedStudents")
	}

	exam := &model.Exam{
		Title:               req.Title,
		Description:         req.Description,
		Type:                req.Type,
		ProjectTotalMarks:   req.ProjectTotalMarks,
		Duration:            req.Duration,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		CreatedBy:           creatorID,
		DepartmentID:        req.DepartmentID,
		Status:              model.ExamDraft,
		IsPublic:            req.IsPublic,
		ResultDisplayOption: req.ResultDisplayOption,
		Instructions:        req.Instructions,
		MaxAttempts:         req.MaxAttempts,
		ShuffleQuestions:    true,
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if exam.MaxAttempts <= 0 {
		exam.MaxAttempts = 1
	}
	if exam.ResultDisplayOption == "" {
		exam.ResultDisplayOption = model.ShowFullDetails
	}
	if len(req.AllowedStudents) > 0 {
		raw, err := json.Marshal(req.AllowedStudents)
		if err != nil {
			return nil, err
		}
		exam.AllowedStudents = raw
	}

	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) UpdateExam(editorID uint, examID uint, req ExamCreateRequest) (*model.Exam, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, util.Validationf("endDate must be after startDate")
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.ProjectTotalMarks = req.ProjectTotalMarks
	exam.Duration = req.Duration
	exam.StartDate = req.StartDate
	exam.EndDate = req.EndDate
	exam.DepartmentID = req.DepartmentID
	exam.IsPublic = req.IsPublic
	exam.Instructions = req.Instructions
	if req.MaxAttempts > 0 {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ResultDisplayOption != "" {
		exam.ResultDisplayOption = req.ResultDisplayOption
	}
	if req.AllowedStudents != nil {
		raw, err := json.Marshal(req.AllowedStudents)
		if err != nil {
			return nil, err
		}
		exam.AllowedStudents = raw
	}

	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExam(examID uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByIDWithQuestions(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

func (s *ExamService) ListExams(filter repository.ExamFilter, page, limit int) ([]model.Exam, int, error) {
	return s.ExamRepo.List(filter, page, limit)
}

func (s *ExamService) ListAvailableExams(page, limit int) ([]model.Exam, int, error) {
	return s.ExamRepo.ListAvailable(time.Now(), page, limit)
}

// PublishExam 没有题目的考试不允许发布
func (s *ExamService) PublishExam(examID uint) (*model.Exam, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if exam.Status == model.ExamPublished {
		return exam, nil
	}

	if exam.Type != model.ExamTypeProject {
		questions, err := s.QuestionRepo.ListByExam(examID)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, util.StateConflictf("cannot publish exam without questions")
		}
		// 发布前再验一次答案键完整性，拦下绕过创作校验的历史脏数据
		for i := range questions {
			q := &questions[i]
			if q.Type == model.QuestionMCQ && q.CorrectOptionCount() != 1 {
				return nil, util.DataIntegrityf(nil,
					"question %d has %d correct options, expected exactly 1", q.ID, q.CorrectOptionCount())
			}
		}
	}

	exam.Status = model.ExamPublished
	if err := s.ExamRepo.UpdateStatus(exam.ID, exam.Status); err != nil {
		return nil, err
	}

	s.Notifier.NotifyStudents(exam.AllowedStudentIDs(), model.NotifyExamPublished,
		"New exam available", "Exam \""+exam.Title+"\" has been published",
		map[string]interface{}{"examId": exam.ID})
	return exam, nil
}

func (s *ExamService) UnpublishExam(examID uint) (*model.Exam, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	exam.Status = model.ExamDraft
	if err := s.ExamRepo.UpdateStatus(exam.ID, exam.Status); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ArchiveExam(examID uint) (*model.Exam, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	exam.Status = model.ExamArchived
	if err := s.ExamRepo.UpdateStatus(exam.ID, exam.Status); err != nil {
		return nil, err
	}
	return exam, nil
}

// DeleteExam 级联删除，固定顺序：结果 → 提交 → 尝试 → 题目 → 解绑部门 → 考试。
// 每步为幂等删除，中途失败可重跑，不会留下指向已删考试的悬挂记录。
func (s *ExamService) DeleteExam(examID uint) error {
	if _, err := s.findExam(examID); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"results", func() error { return s.ResultRepo.DeleteByExam(examID) }},
		{"submissions", func() error { return s.SubmissionRepo.DeleteByExam(examID) }},
		{"attempts", func() error { return s.AttemptRepo.DeleteByExam(examID) }},
		{"questions", func() error { return s.QuestionRepo.DeleteByExam(examID) }},
		{"department", func() error { return s.ExamRepo.DetachDepartment(examID) }},
		{"exam", func() error { return s.ExamRepo.Delete(examID) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			logger.Log.Error("exam cascade delete step failed",
				zap.Uint("examId", examID), zap.String("step", step.name), zap.Error(err))
			return err
		}
	}

	logger.Log.Info("exam deleted with cascade", zap.Uint("examId", examID))
	return nil
}

func (s *ExamService) findExam(examID uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	return exam, nil
}
