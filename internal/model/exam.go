package model

import (
	"encoding/json"
	"time"
)

type ExamType string

const (
	ExamTypeMCQ     ExamType = "MCQ"
	ExamTypeProject ExamType = "PROJECT"
	ExamTypeMixed   ExamType = "MIXED"
)

type ExamStatus string

const (
	ExamDraft      ExamStatus = "DRAFT"
	ExamPublished  ExamStatus = "PUBLISHED"
	ExamInProgress ExamStatus = "IN_PROGRESS"
	ExamCompleted  ExamStatus = "COMPLETED"
	ExamArchived   ExamStatus = "ARCHIVED"
)

type ResultDisplayOption string

const (
	HideResults     ResultDisplayOption = "HIDE_RESULTS"
	ShowScoreOnly   ResultDisplayOption = "SHOW_SCORE_ONLY"
	ShowFullDetails ResultDisplayOption = "SHOW_FULL_DETAILS"
)

// swagger:model Exam
type Exam struct {
	BaseModel
	Title       string   `gorm:"size:100;not null" json:"title"`
	Description string   `gorm:"size:500" json:"description"`
	Type        ExamType `gorm:"type:enum('MCQ','PROJECT','MIXED');not null" json:"type"`

	// 项目型考试的总分，MCQ 考试由题目分值求和
	ProjectTotalMarks int `gorm:"default:100" json:"projectTotalMarks"`

	Duration  int       `gorm:"not null" json:"duration"` // Minutes
	StartDate time.Time `gorm:"index;not null" json:"startDate"`
	EndDate   time.Time `gorm:"index;not null" json:"endDate"`

	CreatedBy    uint `gorm:"index;type:bigint unsigned" json:"createdBy"`
	DepartmentID uint `gorm:"index;type:bigint unsigned" json:"departmentId"`

	Status   ExamStatus `gorm:"type:enum('DRAFT','PUBLISHED','IN_PROGRESS','COMPLETED','ARCHIVED');default:'PUBLISHED';index" json:"status"`
	IsPublic bool       `gorm:"default:false" json:"isPublic"`

	// 非公开考试时允许参加的学生ID数组（JSON array）
	AllowedStudents json.RawMessage `gorm:"type:json" json:"allowedStudents,omitempty"`

	ShuffleQuestions    bool                `gorm:"default:true" json:"shuffleQuestions"`
	ResultDisplayOption ResultDisplayOption `gorm:"size:30;default:'SHOW_FULL_DETAILS'" json:"resultDisplayOption"`
	Instructions        string              `gorm:"type:text" json:"instructions"`
	MaxAttempts         int                 `gorm:"default:1" json:"maxAttempts"`

	Questions []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// AllowedStudentIDs 解析允许参加的学生ID列表
func (e *Exam) AllowedStudentIDs() []uint {
	if len(e.AllowedStudents) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(e.AllowedStudents, &ids); err != nil {
		return nil
	}
	return ids
}

// IsStudentAllowed 公开考试对所有学生开放，否则检查允许名单
func (e *Exam) IsStudentAllowed(studentID uint) bool {
	if e.IsPublic {
		return true
	}
	for _, id := range e.AllowedStudentIDs() {
		if id == studentID {
			return true
		}
	}
	return false
}

// TotalMarks 项目型考试返回固定总分，其余按题目分值求和
func (e *Exam) TotalMarks(questions []Question) int {
	if e.Type == ExamTypeProject {
		if e.ProjectTotalMarks > 0 {
			return e.ProjectTotalMarks
		}
		return 100
	}
	total := 0
	for _, q := range questions {
		total += q.Marks
	}
	return total
}
