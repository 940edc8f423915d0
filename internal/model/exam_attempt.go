package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptExpired    AttemptStatus = "EXPIRED"
)

// swagger:model ExamAttempt
type ExamAttempt struct {
	BaseModel
	ExamID    uint `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	StudentID uint `gorm:"index;type:bigint unsigned;not null" json:"studentId"`

	StartTime   time.Time  `gorm:"not null" json:"startTime"`
	EndTime     time.Time  `gorm:"not null" json:"endTime"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	Status        AttemptStatus `gorm:"type:enum('IN_PROGRESS','SUBMITTED','EXPIRED');default:'IN_PROGRESS';index" json:"status"`
	TotalMarks    int           `gorm:"default:0" json:"totalMarks"`
	AttemptNumber int           `gorm:"not null" json:"attemptNumber"` // 1-based, per student per exam

	GradedBy *uint      `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt *time.Time `json:"gradedAt,omitempty"`

	// 创建时捕获的题目快照，顺序（含洗牌决定）固定，之后不再重排
	Questions []AttemptQuestion `gorm:"foreignKey:AttemptID" json:"questions,omitempty"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// IsCompleted 已提交或已过期的尝试不再接受作答
func (a *ExamAttempt) IsCompleted() bool {
	return a.Status == AttemptSubmitted || a.Status == AttemptExpired
}

// AttemptQuestion 尝试中单个题目的条目：提交的答案与该题得分
type AttemptQuestion struct {
	BaseModel
	AttemptID  uint `gorm:"index;type:bigint unsigned;not null" json:"attemptId"`
	QuestionID uint `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Position   int  `gorm:"not null" json:"position"`

	// MCQ 存选项下标，TrueFalse/ShortAnswer/Essay 存文本；未作答为空串
	Answer string `gorm:"type:text" json:"answer"`
	Marks  int    `gorm:"default:0" json:"marks"`
}

func (AttemptQuestion) TableName() string {
	return "exam_attempt_questions"
}
