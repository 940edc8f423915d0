package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"exam_portal_backend/internal/grading"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

// ProjectService 项目型考试：文件提交走对象存储，评分为人工，
// 通过线用考试存储的总分推导，与 MCQ 的固定 50% 规则并行。
type ProjectService struct {
	ExamRepo       *repository.ExamRepository
	SubmissionRepo *repository.SubmissionRepository
	ResultRepo     *repository.ResultRepository
	Storage        *StorageService
	Notifier       *NotificationService
}

func NewProjectService(
	examRepo *repository.ExamRepository,
	submissionRepo *repository.SubmissionRepository,
	resultRepo *repository.ResultRepository,
	storage *StorageService,
	notifier *NotificationService,
) *ProjectService {
	return &ProjectService{
		ExamRepo:       examRepo,
		SubmissionRepo: submissionRepo,
		ResultRepo:     resultRepo,
		Storage:        storage,
		Notifier:       notifier,
	}
}

// SubmitProject 上传项目文件并登记提交。同一学生重复提交覆盖文件记录。
func (s *ProjectService) SubmitProject(ctx context.Context, studentID, examID uint, fileName string, reader io.Reader, size int64, contentType string, meta SubmitMeta) (*model.Submission, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if exam.Type != model.ExamTypeProject && exam.Type != model.ExamTypeMixed {
		return nil, util.Validationf("exam does not accept project submissions")
	}
	if exam.Status != model.ExamPublished {
		return nil, util.StateConflictf("exam is not published")
	}
	if !exam.IsStudentAllowed(studentID) {
		return nil, util.Authorizationf("you are not allowed to take this exam")
	}
	now := time.Now()
	if now.Before(exam.StartDate) {
		return nil, util.StateConflictf("exam has not started yet")
	}
	meta.IsLate = now.After(exam.EndDate)

	objectName := fmt.Sprintf("projects/%d/%d/%s_%s", examID, studentID, model.GenerateUUID(), fileName)
	fileURL, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, util.Downstreamf(err, "project file upload failed")
	}

	sub, err := s.SubmissionRepo.FindByCompoundKey(examID, studentID, 1)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = &model.Submission{
			ExamID:         examID,
			StudentID:      studentID,
			AttemptNumber:  1,
			SubmissionType: model.ExamTypeProject,
			StartedAt:      &now,
		}
		if err := s.SubmissionRepo.Create(sub); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	project := sub.Project
	if project == nil {
		project = &model.ProjectSubmission{SubmissionID: sub.ID}
	}
	project.FileURL = fileURL
	project.FileName = fileName
	project.FileSize = size
	project.FileType = contentType
	project.SubmittedAt = now
	if err := s.SubmissionRepo.SaveProject(project); err != nil {
		return nil, err
	}

	sub.Status = model.SubmissionSubmitted
	sub.SubmittedAt = &now
	sub.IPAddress = meta.IPAddress
	sub.BrowserInfo = meta.BrowserInfo
	sub.IsLate = meta.IsLate
	sub.Project = project
	if err := s.SubmissionRepo.Update(sub); err != nil {
		return nil, err
	}

	s.Notifier.Notify(exam.CreatedBy, &studentID, model.NotifyProjectSubmitted,
		"Project submitted", "A project was submitted for \""+exam.Title+"\"",
		map[string]interface{}{"examId": exam.ID, "submissionId": sub.ID})
	return sub, nil
}

// GradeProject 人工评分。超出考试总分的给分拒绝而不是钳制，
// 通过判定用考试自身的通过线。
func (s *ProjectService) GradeProject(graderID, submissionID uint, marks int, feedback string) (*model.Result, error) {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sub.Project == nil {
		return nil, util.Validationf("submission has no project file")
	}

	exam, err := s.ExamRepo.FindByID(sub.ExamID)
	if err != nil {
		return nil, err
	}
	totalMarks := exam.TotalMarks(nil)
	if marks < 0 || marks > totalMarks {
		return nil, util.Validationf("marks must be between 0 and %d", totalMarks)
	}

	now := time.Now()
	sub.Project.MarksObtained = &marks
	sub.Project.GradedBy = &graderID
	sub.Project.GradedAt = &now
	if feedback != "" {
		sub.Project.FeedbackText = feedback
		sub.Project.FeedbackBy = &graderID
		sub.Project.FeedbackAt = &now
	}
	if err := s.SubmissionRepo.SaveProject(sub.Project); err != nil {
		return nil, err
	}

	sub.TotalMarksObtained = marks
	sub.Status = model.SubmissionGraded
	if err := s.SubmissionRepo.Update(sub); err != nil {
		return nil, err
	}

	result, err := s.ResultRepo.FindBySubmission(sub.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = &model.Result{
			ExamID:       sub.ExamID,
			StudentID:    sub.StudentID,
			SubmissionID: sub.ID,
		}
		if err := s.ResultRepo.Create(result); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	percentage := grading.Percentage(marks, totalMarks)
	result.TotalMarks = totalMarks
	result.ObtainedMarks = marks
	result.Percentage = percentage
	result.Grade = grading.GradeLetter(percentage)
	if marks >= grading.PassingMarks(totalMarks) {
		result.Status = model.ResultPass
	} else {
		result.Status = model.ResultFail
	}
	result.Feedback = feedback
	result.EvaluatedBy = &graderID
	result.EvaluatedAt = &now
	if err := s.ResultRepo.Update(result); err != nil {
		return nil, err
	}

	s.Notifier.Notify(sub.StudentID, &graderID, model.NotifyProjectGraded,
		"Project graded", "Your project for \""+exam.Title+"\" has been graded",
		map[string]interface{}{"examId": exam.ID, "resultId": result.ID})
	return result, nil
}

// ProvideFeedback 单独的反馈动作，不影响分数
func (s *ProjectService) ProvideFeedback(teacherID, submissionID uint, text string) error {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSubmissionNotFound
	}
	if err != nil {
		return err
	}
	if sub.Project == nil {
		return util.Validationf("submission has no project file")
	}
	now := time.Now()
	sub.Project.FeedbackText = text
	sub.Project.FeedbackBy = &teacherID
	sub.Project.FeedbackAt = &now
	return s.SubmissionRepo.SaveProject(sub.Project)
}
