package model

import "time"

type ResultStatus string

const (
	ResultPass          ResultStatus = "PASS"
	ResultFail          ResultStatus = "FAIL"
	ResultPendingReview ResultStatus = "PENDING_REVIEW"
	ResultUnderReview   ResultStatus = "UNDER_REVIEW"
	ResultCancelled     ResultStatus = "CANCELLED"
)

// ResultAnalytics 结果分析块，与 percentage/grade/status 一起整体重算
type ResultAnalytics struct {
	TimeSpent        int     `gorm:"default:0" json:"timeSpent"` // seconds
	AttemptsCount    int     `gorm:"default:0" json:"attemptsCount"`
	CorrectAnswers   int     `gorm:"default:0" json:"correctAnswers"`
	IncorrectAnswers int     `gorm:"default:0" json:"incorrectAnswers"`
	SkippedQuestions int     `gorm:"default:0" json:"skippedQuestions"`
	AccuracyRate     float64 `gorm:"default:0" json:"accuracyRate"` // percentage
}

// Result 面向学生的结果，与 Submission 一对一
// swagger:model Result
type Result struct {
	BaseModel
	ExamID       uint `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	StudentID    uint `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	SubmissionID uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"submissionId"`

	TotalMarks    int          `gorm:"not null" json:"totalMarks"`
	ObtainedMarks int          `gorm:"not null" json:"obtainedMarks"`
	Percentage    float64      `json:"percentage"`
	Grade         string       `gorm:"size:3" json:"grade"`
	Status        ResultStatus `gorm:"type:enum('PASS','FAIL','PENDING_REVIEW','UNDER_REVIEW','CANCELLED');not null;index" json:"status"`

	// 结果计算与发布是解耦的两步，未发布的结果学生不可见
	IsReleased  bool       `gorm:"default:false" json:"isReleased"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	EvaluatedBy *uint      `gorm:"type:bigint unsigned" json:"evaluatedBy,omitempty"`
	EvaluatedAt *time.Time `json:"evaluatedAt,omitempty"`

	Feedback string `gorm:"type:text" json:"feedback,omitempty"`

	Analytics ResultAnalytics `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	QuestionResults []ResultQuestion `gorm:"foreignKey:ResultID" json:"questionResults,omitempty"`
}

func (Result) TableName() string {
	return "results"
}

// SumQuestionMarks 各题得分的新鲜求和
func (r *Result) SumQuestionMarks() int {
	total := 0
	for _, qr := range r.QuestionResults {
		total += qr.ObtainedMarks
	}
	return total
}

// ResultQuestion 结果中的单题明细，镜像 Submission 的判分条目
type ResultQuestion struct {
	BaseModel
	ResultID   uint `gorm:"index;type:bigint unsigned;not null" json:"resultId"`
	QuestionID uint `gorm:"index;type:bigint unsigned;not null" json:"questionId"`

	ObtainedMarks int    `gorm:"not null" json:"obtainedMarks"`
	TotalMarks    int    `gorm:"not null" json:"totalMarks"`
	IsCorrect     bool   `gorm:"not null" json:"isCorrect"`
	Feedback      string `gorm:"type:text" json:"feedback,omitempty"`
	TimeTaken     int    `gorm:"default:0" json:"timeTaken"` // seconds
}

func (ResultQuestion) TableName() string {
	return "result_questions"
}
