package services

import (
	"context"
	"errors"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"

	"gorm.io/gorm"
)

// NotificationStore persists notifications and serves the read paths.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	InsertMany(ctx context.Context, ns []models.Notification) error
	ListForUser(ctx context.Context, userID string, opts NotificationListOptions) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	if db == nil {
		db = config.DB
	}
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	return dependencyError("insert notification", s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormNotificationStore) InsertMany(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return dependencyError("insert notifications", s.db.WithContext(ctx).CreateInBatches(ns, 100).Error)
}

func (s *GormNotificationStore) ListForUser(ctx context.Context, userID string, opts NotificationListOptions) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dependencyError("count notifications", err)
	}

	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, dependencyError("list notifications", err)
	}
	return rows, total, nil
}

func (s *GormNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, dependencyError("count unread notifications", err)
}

// MarkRead flags one notification owned by userID as read.
func (s *GormNotificationStore) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, dependencyError("load notification", err)
	}
	if n.Read {
		return &n, nil
	}
	if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
		return nil, dependencyError("mark notification read", err)
	}
	n.Read = true
	return &n, nil
}

func (s *GormNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, dependencyError("mark all notifications read", res.Error)
	}
	return res.RowsAffected, nil
}
