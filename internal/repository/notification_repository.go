package repository

import (
	"exam_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) CreateBatch(ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.DB.Create(&ns).Error
}

func (r *NotificationRepository) FindByID(id string) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.Where("id = ?", id).First(&n).Error
	return &n, err
}

func (r *NotificationRepository) ListByRecipient(recipientID uint, unreadOnly bool, page, limit int) ([]model.Notification, int, error) {
	var ns []model.Notification
	var total int64
	query := r.DB.Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("status = ?", model.NotificationUnread)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ns).Error
	return ns, int(total), err
}

func (r *NotificationRepository) CountUnread(recipientID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND status = ?", recipientID, model.NotificationUnread).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id string, recipientID uint) error {
	now := time.Now()
	return r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"status": model.NotificationRead, "read_at": now}).Error
}

func (r *NotificationRepository) MarkAllRead(recipientID uint) error {
	now := time.Now()
	return r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND status = ?", recipientID, model.NotificationUnread).
		Updates(map[string]interface{}{"status": model.NotificationRead, "read_at": now}).Error
}

// DeleteOlderThan 后台定时清理过期通知
func (r *NotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.DB.Unscoped().Where("created_at < ?", cutoff).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
