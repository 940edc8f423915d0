package service

import (
	"encoding/json"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService 通知为尽力而为：发送失败只记日志，
// 绝不让通知错误影响考试主流程。
type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	RetentionDays    int
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, retentionDays int) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		RetentionDays:    retentionDays,
	}
}

func (s *NotificationService) Notify(recipientID uint, senderID *uint, typ model.NotificationType, title, message string, data map[string]interface{}) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	n := &model.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        raw,
		Status:      model.NotificationUnread,
	}
	if err := s.NotificationRepo.Create(n); err != nil {
		logger.Log.Warn("failed to create notification",
			zap.Uint("recipientId", recipientID), zap.String("type", string(typ)), zap.Error(err))
	}
}

func (s *NotificationService) NotifyStudents(studentIDs []uint, typ model.NotificationType, title, message string, data map[string]interface{}) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	ns := make([]model.Notification, 0, len(studentIDs))
	for _, id := range studentIDs {
		ns = append(ns, model.Notification{
			RecipientID: id,
			Type:        typ,
			Title:       title,
			Message:     message,
			Data:        raw,
			Status:      model.NotificationUnread,
		})
	}
	if err := s.NotificationRepo.CreateBatch(ns); err != nil {
		logger.Log.Warn("failed to create notifications",
			zap.Int("count", len(ns)), zap.String("type", string(typ)), zap.Error(err))
	}
}

func (s *NotificationService) List(recipientID uint, unreadOnly bool, page, limit int) ([]model.Notification, int, error) {
	return s.NotificationRepo.ListByRecipient(recipientID, unreadOnly, page, limit)
}

func (s *NotificationService) CountUnread(recipientID uint) (int64, error) {
	return s.NotificationRepo.CountUnread(recipientID)
}

func (s *NotificationService) MarkRead(id string, recipientID uint) error {
	n, err := s.NotificationRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.Validationf("notification %s not found", id)
	}
	if err != nil {
		return err
	}
	if n.RecipientID != recipientID {
		return util.Authorizationf("notification belongs to another user")
	}
	return s.NotificationRepo.MarkRead(id, recipientID)
}

func (s *NotificationService) MarkAllRead(recipientID uint) error {
	return s.NotificationRepo.MarkAllRead(recipientID)
}

// CleanupExpired 删除超过保留期的通知，由后台定时任务调用
func (s *NotificationService) CleanupExpired() {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays)
	deleted, err := s.NotificationRepo.DeleteOlderThan(cutoff)
	if err != nil {
		logger.Log.Error("notification cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Log.Info("expired notifications cleaned up",
			zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
