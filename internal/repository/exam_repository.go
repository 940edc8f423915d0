package repository

import (
	"exam_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	return &exam, err
}

func (r *ExamRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Preload("Questions", "is_active = ?", true).First(&exam, id).Error
	return &exam, err
}

type ExamFilter struct {
	Status       model.ExamStatus
	Type         model.ExamType
	DepartmentID uint
	CreatedBy    uint
}

func (r *ExamRepository) List(filter ExamFilter, page, limit int) ([]model.Exam, int, error) {
	var exams []model.Exam
	var total int64
	query := r.DB.Model(&model.Exam{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.DepartmentID > 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.CreatedBy > 0 {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&exams).Error
	return exams, int(total), err
}

// ListAvailable 学生可见的考试：已发布且在时间窗口内
func (r *ExamRepository) ListAvailable(now time.Time, page, limit int) ([]model.Exam, int, error) {
	var exams []model.Exam
	var total int64
	query := r.DB.Model(&model.Exam{}).
		Where("status = ?", model.ExamPublished).
		Where("start_date <= ? AND end_date >= ?", now, now)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("start_date asc").Offset(offset).Limit(limit).Find(&exams).Error
	return exams, int(total), err
}

func (r *ExamRepository) UpdateStatus(id uint, status model.ExamStatus) error {
	return r.DB.Model(&model.Exam{}).Where("id = ?", id).Update("status", status).Error
}

func (r *ExamRepository) DetachDepartment(id uint) error {
	return r.DB.Model(&model.Exam{}).Where("id = ?", id).Update("department_id", 0).Error
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Exam{}, id).Error
}
