package model

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifyExamPublished      NotificationType = "EXAM_PUBLISHED"
	NotifyExamGraded         NotificationType = "EXAM_GRADED"
	NotifyProjectSubmitted   NotificationType = "PROJECT_SUBMITTED"
	NotifyProjectGraded      NotificationType = "PROJECT_GRADED"
	NotifySubmissionReceived NotificationType = "SUBMISSION_RECEIVED"
	NotifyGradeUpdated       NotificationType = "GRADE_UPDATED"
	NotifyResultReleased     NotificationType = "RESULT_RELEASED"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationRead     NotificationStatus = "READ"
	NotificationArchived NotificationStatus = "ARCHIVED"
)

// swagger:model Notification
type Notification struct {
	UUIDBase
	RecipientID uint             `gorm:"index;type:bigint unsigned;not null" json:"recipientId"`
	SenderID    *uint            `gorm:"type:bigint unsigned" json:"senderId,omitempty"`
	Type        NotificationType `gorm:"size:30;not null" json:"type"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"size:1000;not null" json:"message"`

	// 与通知类型相关的附加数据（examId/submissionId/resultId 等）
	Data json.RawMessage `gorm:"type:json" json:"data,omitempty"`

	Status NotificationStatus `gorm:"size:10;default:'UNREAD';index" json:"status"`
	ReadAt *time.Time         `json:"readAt,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
