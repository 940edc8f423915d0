package model

import "time"

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionGraded    SubmissionStatus = "GRADED"
)

// Submission 一次尝试的持久化判分记录，(examId, studentId, attemptNumber) 唯一
// swagger:model Submission
type Submission struct {
	BaseModel
	ExamID        uint `gorm:"uniqueIndex:idx_sub_exam_student_attempt;type:bigint unsigned;not null" json:"examId"`
	StudentID     uint `gorm:"uniqueIndex:idx_sub_exam_student_attempt;type:bigint unsigned;not null" json:"studentId"`
	AttemptNumber int  `gorm:"uniqueIndex:idx_sub_exam_student_attempt;not null" json:"attemptNumber"`

	SubmissionType ExamType         `gorm:"type:enum('MCQ','PROJECT','MIXED');not null" json:"submissionType"`
	Status         SubmissionStatus `gorm:"type:enum('DRAFT','SUBMITTED','GRADED');default:'DRAFT'" json:"status"`

	// 不变量：始终等于 answers 条目 marksObtained 之和（项目型取项目得分）
	TotalMarksObtained int `gorm:"default:0" json:"totalMarksObtained"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	IPAddress   string `gorm:"size:45" json:"ipAddress,omitempty"`
	BrowserInfo string `gorm:"size:255" json:"browserInfo,omitempty"`
	IsLate      bool   `gorm:"default:false" json:"isLate"`

	Answers []SubmissionAnswer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
	Project *ProjectSubmission `gorm:"foreignKey:SubmissionID" json:"project,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SumAnswerMarks 各条目得分的新鲜求和，总分永远整体重算而不是增量修补
func (s *Submission) SumAnswerMarks() int {
	total := 0
	for _, a := range s.Answers {
		total += a.MarksObtained
	}
	return total
}

// SubmissionAnswer 已判分的单题答案，按题目类型区分字段
type SubmissionAnswer struct {
	BaseModel
	SubmissionID uint         `gorm:"index;type:bigint unsigned;not null" json:"submissionId"`
	QuestionID   uint         `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	QuestionType QuestionType `gorm:"size:20;not null" json:"questionType"`

	// MCQ：所选选项下标；其他类型为 -1
	SelectedOption int `gorm:"default:-1" json:"selectedOption"`
	// TrueFalse：规范化后的 "true"/"false"；ShortAnswer/Essay 存原文
	AnswerText string `gorm:"type:text" json:"answerText,omitempty"`

	IsCorrect     bool `gorm:"default:false" json:"isCorrect"`
	MarksObtained int  `gorm:"default:0" json:"marksObtained"`
	TimeSpent     int  `gorm:"default:0" json:"timeSpent"` // seconds
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}

// ProjectSubmission 项目型考试的文件提交与人工评分
type ProjectSubmission struct {
	UUIDBase
	SubmissionID uint `gorm:"index;type:bigint unsigned;not null" json:"submissionId"`

	FileURL  string `gorm:"size:500;not null" json:"fileUrl"`
	FileName string `gorm:"size:255;not null" json:"fileName"`
	FileSize int64  `gorm:"not null" json:"fileSize"`
	FileType string `gorm:"size:100" json:"fileType"`

	SubmittedAt time.Time `json:"submittedAt"`

	FeedbackText string     `gorm:"type:text" json:"feedbackText,omitempty"`
	FeedbackBy   *uint      `gorm:"type:bigint unsigned" json:"feedbackBy,omitempty"`
	FeedbackAt   *time.Time `json:"feedbackAt,omitempty"`

	MarksObtained *int       `json:"marksObtained,omitempty"`
	GradedBy      *uint      `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt      *time.Time `json:"gradedAt,omitempty"`
}

func (ProjectSubmission) TableName() string {
	return "project_submissions"
}
