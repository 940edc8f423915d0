package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(sub *model.Submission) error {
	return r.DB.Create(sub).Error
}

func (r *SubmissionRepository) Update(sub *model.Submission) error {
	return r.DB.Save(sub).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.Preload("Answers").Preload("Project").First(&sub, id).Error
	return &sub, err
}

// FindByCompoundKey 提交在 (examId, studentId, attemptNumber) 上唯一
func (r *SubmissionRepository) FindByCompoundKey(examID, studentID uint, attemptNumber int) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.Preload("Answers").Preload("Project").
		Where("exam_id = ? AND student_id = ? AND attempt_number = ?", examID, studentID, attemptNumber).
		First(&sub).Error
	return &sub, err
}

// ReplaceAnswers 整体替换答案条目，重复提交同一尝试时保证幂等
func (r *SubmissionRepository) ReplaceAnswers(submissionID uint, answers []model.SubmissionAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("submission_id = ?", submissionID).Delete(&model.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].ID = 0
			answers[i].SubmissionID = submissionID
		}
		return tx.Create(&answers).Error
	})
}

func (r *SubmissionRepository) UpdateAnswer(answer *model.SubmissionAnswer) error {
	return r.DB.Save(answer).Error
}

func (r *SubmissionRepository) ListByExam(examID uint, page, limit int) ([]model.Submission, int, error) {
	var subs []model.Submission
	var total int64
	query := r.DB.Model(&model.Submission{}).Where("exam_id = ?", examID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Answers").Preload("Project").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, int(total), err
}

func (r *SubmissionRepository) ListByStudent(studentID uint, page, limit int) ([]model.Submission, int, error) {
	var subs []model.Submission
	var total int64
	query := r.DB.Model(&model.Submission{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Answers").Order("created_at desc").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, int(total), err
}

// FindByQuestion 重算引擎需要找到包含该题答案条目的所有提交
func (r *SubmissionRepository) FindByQuestion(questionID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.Preload("Answers").
		Joins("JOIN submission_answers sa ON sa.submission_id = submissions.id").
		Where("sa.question_id = ? AND sa.deleted_at IS NULL", questionID).
		Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) DeleteAnswersByQuestion(questionID uint) error {
	return r.DB.Where("question_id = ?", questionID).Delete(&model.SubmissionAnswer{}).Error
}

func (r *SubmissionRepository) SaveProject(project *model.ProjectSubmission) error {
	return r.DB.Save(project).Error
}

func (r *SubmissionRepository) DeleteByExam(examID uint) error {
	err := r.DB.Where("submission_id IN (?)",
		r.DB.Model(&model.Submission{}).Select("id").Where("exam_id = ?", examID),
	).Delete(&model.SubmissionAnswer{}).Error
	if err != nil {
		return err
	}
	err = r.DB.Where("submission_id IN (?)",
		r.DB.Model(&model.Submission{}).Select("id").Where("exam_id = ?", examID),
	).Delete(&model.ProjectSubmission{}).Error
	if err != nil {
		return err
	}
	return r.DB.Where("exam_id = ?", examID).Delete(&model.Submission{}).Error
}
