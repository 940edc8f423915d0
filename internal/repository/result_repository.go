package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.Result) error {
	return r.DB.Create(result).Error
}

func (r *ResultRepository) Update(result *model.Result) error {
	return r.DB.Save(result).Error
}

func (r *ResultRepository) FindByID(id uint) (*model.Result, error) {
	var result model.Result
	err := r.DB.Preload("QuestionResults").First(&result, id).Error
	return &result, err
}

// FindBySubmission Result 与 Submission 一对一
func (r *ResultRepository) FindBySubmission(submissionID uint) (*model.Result, error) {
	var result model.Result
	err := r.DB.Preload("QuestionResults").
		Where("submission_id = ?", submissionID).First(&result).Error
	return &result, err
}

// ReplaceQuestionResults 整体替换单题明细，保持与重新编译的结果一致
func (r *ResultRepository) ReplaceQuestionResults(resultID uint, entries []model.ResultQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("result_id = ?", resultID).Delete(&model.ResultQuestion{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].ResultID = resultID
		}
		return tx.Create(&entries).Error
	})
}

func (r *ResultRepository) UpdateQuestionResult(entry *model.ResultQuestion) error {
	return r.DB.Save(entry).Error
}

func (r *ResultRepository) ListByExam(examID uint, page, limit int) ([]model.Result, int, error) {
	var results []model.Result
	var total int64
	query := r.DB.Model(&model.Result{}).Where("exam_id = ?", examID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("percentage desc").Offset(offset).Limit(limit).Find(&results).Error
	return results, int(total), err
}

func (r *ResultRepository) ListByStudent(studentID uint, releasedOnly bool, page, limit int) ([]model.Result, int, error) {
	var results []model.Result
	var total int64
	query := r.DB.Model(&model.Result{}).Where("student_id = ?", studentID)
	if releasedOnly {
		query = query.Where("is_released = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&results).Error
	return results, int(total), err
}

func (r *ResultRepository) ListByDepartment(departmentID uint, page, limit int) ([]model.Result, int, error) {
	var results []model.Result
	var total int64
	query := r.DB.Model(&model.Result{}).
		Joins("JOIN exams ON exams.id = results.exam_id").
		Where("exams.department_id = ?", departmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("results.created_at desc").Offset(offset).Limit(limit).Find(&results).Error
	return results, int(total), err
}

// FindByQuestion 重算引擎需要找到包含该题明细的所有结果
func (r *ResultRepository) FindByQuestion(questionID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Preload("QuestionResults").
		Joins("JOIN result_questions rq ON rq.result_id = results.id").
		Where("rq.question_id = ? AND rq.deleted_at IS NULL", questionID).
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) DeleteQuestionEntriesByQuestion(questionID uint) error {
	return r.DB.Where("question_id = ?", questionID).Delete(&model.ResultQuestion{}).Error
}

func (r *ResultRepository) DeleteByExam(examID uint) error {
	err := r.DB.Where("result_id IN (?)",
		r.DB.Model(&model.Result{}).Select("id").Where("exam_id = ?", examID),
	).Delete(&model.ResultQuestion{}).Error
	if err != nil {
		return err
	}
	return r.DB.Where("exam_id = ?", examID).Delete(&model.Result{}).Error
}
