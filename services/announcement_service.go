package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const announcementListLimit = 50

type AnnouncementInput struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=5000"`
	Tag     string `json:"tag" binding:"announcement_tag"`
}

type AnnouncementService struct {
	db       *gorm.DB
	validate *validator.Validate
	now      func() time.Time
}

func NewAnnouncementService(db *gorm.DB) *AnnouncementService {
	if db == nil {
		db = config.DB
	}
	return &AnnouncementService{db: db, validate: newInputValidator(), now: time.Now}
}

// List returns the latest announcements with their creator preloaded.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	var rows []models.Announcement
	err := s.db.WithContext(ctx).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("user_id", "full_name")
		}).
		Order("created_at DESC").
		Limit(announcementListLimit).
		Find(&rows).Error
	if err != nil {
		return nil, dependencyError("list announcements", err)
	}
	return rows, nil
}

func (s *AnnouncementService) UnseenCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Announcement{}).
		Where("announcement_id NOT IN (?)",
			s.db.Model(&models.AnnouncementView{}).Select("announcement_id").Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return 0, dependencyError("count unseen announcements", err)
	}
	return count, nil
}

// MarkAllSeen records a view for every announcement userID has not seen yet.
func (s *AnnouncementService) MarkAllSeen(ctx context.Context, userID string) (int, error) {
	var unseen []string
	db := s.db.WithContext(ctx)
	err := db.Model(&models.Announcement{}).
		Where("announcement_id NOT IN (?)",
			s.db.Model(&models.AnnouncementView{}).Select("announcement_id").Where("user_id = ?", userID)).
		Pluck("announcement_id", &unseen).Error
	if err != nil {
		return 0, dependencyError("load unseen announcements", err)
	}
	if len(unseen) == 0 {
		return 0, nil
	}

	now := s.now()
	views := make([]models.AnnouncementView, 0, len(unseen))
	for _, id := range unseen {
		views = append(views, models.AnnouncementView{AnnouncementID: id, UserID: userID, SeenAt: now})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&views).Error; err != nil {
		return 0, dependencyError("mark announcements seen", err)
	}
	return len(views), nil
}

func (s *AnnouncementService) Create(ctx context.Context, adminID string, in AnnouncementInput) (*models.Announcement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Tag = strings.TrimSpace(in.Tag)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	if in.Tag == "" {
		in.Tag = "General"
	}

	now := s.now()
	a := &models.Announcement{
		AnnouncementID: uuid.NewString(),
		Title:          in.Title,
		Content:        in.Content,
		Tag:            in.Tag,
		CreatedBy:      adminID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	db := s.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(a).Error; err != nil {
		return nil, dependencyError("create announcement", err)
	}
	if err := db.Select("user_id", "full_name").Where("user_id = ?", adminID).First(&a.Creator).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dependencyError("load announcement creator", err)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, announcementID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("announcement_id = ?", announcementID).Delete(&models.Announcement{})
		if res.Error != nil {
			return dependencyError("delete announcement", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAnnouncementNotFound
		}
		if err := tx.Where("announcement_id = ?", announcementID).Delete(&models.AnnouncementView{}).Error; err != nil {
			return dependencyError("delete announcement views", err)
		}
		return nil
	})
}
