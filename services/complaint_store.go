package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplaintFilter narrows complaint listings. Zero values match everything.
type ComplaintFilter struct {
	UserID string
	Status models.ComplaintStatus
}

// StatusChange is a conditional status update plus its history entry.
type StatusChange struct {
	ComplaintID     string
	From            models.ComplaintStatus
	To              models.ComplaintStatus
	ExpectedVersion int
	ChangedBy       string
	At              time.Time
	RejectionReason *string
}

// ComplaintStore persists complaints and owns their status history ledger.
type ComplaintStore interface {
	Insert(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, complaintID string) (*models.Complaint, error)
	// ApplyStatusChange returns false without error when the stored row no
	// longer matches the expected status and version.
	ApplyStatusChange(ctx context.Context, change StatusChange) (bool, error)
	List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	ListForAnalytics(ctx context.Context) ([]models.Complaint, error)
	ImageOwner(ctx context.Context, filename string) (string, error)
}

var errStaleComplaint = errors.New("stale complaint version")

type GormComplaintStore struct {
	db *gorm.DB
}

func NewGormComplaintStore(db *gorm.DB) *GormComplaintStore {
	if db == nil {
		db = config.DB
	}
	return &GormComplaintStore{db: db}
}

func (s *GormComplaintStore) Insert(ctx context.Context, complaint *models.Complaint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(complaint).Error; err != nil {
			return fmt.Errorf("insert complaint: %w", err)
		}
		for i := range complaint.StatusHistory {
			complaint.StatusHistory[i].ComplaintID = complaint.ComplaintID
		}
		if len(complaint.StatusHistory) > 0 {
			if err := tx.Create(&complaint.StatusHistory).Error; err != nil {
				return fmt.Errorf("insert status history: %w", err)
			}
		}
		return nil
	})
	return dependencyError("create complaint", err)
}

func (s *GormComplaintStore) GetByID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.db.WithContext(ctx).
		Preload("StatusHistory", orderHistory).
		Where("complaint_id = ?", complaintID).
		First(&complaint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, dependencyError("load complaint", err)
	}
	return &complaint, nil
}

func (s *GormComplaintStore) ApplyStatusChange(ctx context.Context, change StatusChange) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     change.To,
			"version":    gorm.Expr("version + 1"),
			"updated_at": change.At,
		}
		if change.To == models.StatusRejected {
			updates["rejection_reason"] = change.RejectionReason
			updates["rejected_by"] = change.ChangedBy
			updates["rejected_at"] = change.At
		}

		res := tx.Model(&models.Complaint{}).
			Where("complaint_id = ? AND status = ? AND version = ?", change.ComplaintID, change.From, change.ExpectedVersion).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update complaint status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errStaleComplaint
		}

		changedBy := change.ChangedBy
		entry := models.ComplaintStatusHistory{
			ComplaintID: change.ComplaintID,
			Status:      change.To,
			ChangedBy:   &changedBy,
			Timestamp:   change.At,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		return nil
	})
	if errors.Is(err, errStaleComplaint) {
		return false, nil
	}
	if err != nil {
		return false, dependencyError("change complaint status", err)
	}
	return true, nil
}

func (s *GormComplaintStore) List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	query := s.db.WithContext(ctx).Model(&models.Complaint{}).Preload("StatusHistory", orderHistory)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, dependencyError("list complaints", err)
	}
	return complaints, nil
}

// ListForAnalytics loads the projection the analytics aggregator needs:
// status, timestamps and only the Resolved history entries.
func (s *GormComplaintStore) ListForAnalytics(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.WithContext(ctx).
		Select("complaint_id", "status", "created_at", "updated_at").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return orderHistory(db.Where("status = ?", models.StatusResolved))
		}).
		Find(&complaints).Error
	if err != nil {
		return nil, dependencyError("load analytics projection", err)
	}
	return complaints, nil
}

type imageOwnerRow struct {
	UserID string
}

// ImageOwner returns the user id of the complaint that references filename.
func (s *GormComplaintStore) ImageOwner(ctx context.Context, filename string) (string, error) {
	query := s.db.WithContext(ctx).Model(&models.Complaint{}).Select("user_id")
	switch s.db.Dialector.Name() {
	case "postgres":
		needle, _ := json.Marshal([]string{filename})
		query = query.Where("images @> ?::jsonb", string(needle))
	default:
		query = query.Where("JSON_CONTAINS(images, JSON_QUOTE(?))", filename)
	}

	var owner imageOwnerRow
	err := query.Limit(1).Scan(&owner).Error
	if err != nil {
		return "", dependencyError("lookup image owner", err)
	}
	if owner.UserID == "" {
		return "", ErrComplaintNotFound
	}
	return owner.UserID, nil
}

func orderHistory(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, history_id ASC")
}
