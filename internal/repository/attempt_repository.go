package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Create 附带题目快照一起写入
func (r *AttemptRepository) Create(attempt *model.ExamAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.ExamAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&attempt, id).Error
	return &attempt, err
}

func (r *AttemptRepository) CountByStudentExam(studentID, examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) FindInProgress(studentID, examID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("student_id = ? AND exam_id = ? AND status = ?", studentID, examID, model.AttemptInProgress).
		First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) ListByStudent(studentID uint, examID uint, page, limit int) ([]model.ExamAttempt, int, error) {
	var attempts []model.ExamAttempt
	var total int64
	query := r.DB.Model(&model.ExamAttempt{}).Where("student_id = ?", studentID)
	if examID > 0 {
		query = query.Where("exam_id = ?", examID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, int(total), err
}

func (r *AttemptRepository) ListByExam(examID uint, page, limit int) ([]model.ExamAttempt, int, error) {
	var attempts []model.ExamAttempt
	var total int64
	query := r.DB.Model(&model.ExamAttempt{}).Where("exam_id = ?", examID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, int(total), err
}

// FindSubmittedByQuestion 答案键变更重算时需要找到所有包含该题且已提交的尝试
func (r *AttemptRepository) FindSubmittedByQuestion(questionID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Joins("JOIN exam_attempt_questions aq ON aq.attempt_id = exam_attempts.id").
		Where("aq.question_id = ? AND exam_attempts.status = ?", questionID, model.AttemptSubmitted).
		Where("aq.deleted_at IS NULL").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) UpdateQuestionEntry(entry *model.AttemptQuestion) error {
	return r.DB.Save(entry).Error
}

func (r *AttemptRepository) DeleteQuestionEntries(attemptID uint, questionID uint) error {
	return r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Delete(&model.AttemptQuestion{}).Error
}

func (r *AttemptRepository) DeleteEntriesByQuestion(questionID uint) error {
	return r.DB.Where("question_id = ?", questionID).Delete(&model.AttemptQuestion{}).Error
}

func (r *AttemptRepository) DeleteByExam(examID uint) error {
	err := r.DB.Where("attempt_id IN (?)",
		r.DB.Model(&model.ExamAttempt{}).Select("id").Where("exam_id = ?", examID),
	).Delete(&model.AttemptQuestion{}).Error
	if err != nil {
		return err
	}
	return r.DB.Where("exam_id = ?", examID).Delete(&model.ExamAttempt{}).Error
}
