package services

import (
	"context"
	"errors"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"

	"gorm.io/gorm"
)

type ComplaintStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}

func (s *ComplaintStats) add(status models.ComplaintStatus, n int) {
	switch status {
	case models.StatusOpen:
		s.Open += n
	case models.StatusInProgress:
		s.InProgress += n
	case models.StatusResolved:
		s.Resolved += n
	case models.StatusRejected:
		s.Rejected += n
	default:
		return
	}
	s.Total += n
}

type StudentSummary struct {
	models.User
	ComplaintStats ComplaintStats `json:"complaintStats"`
}

type StudentDetail struct {
	Student    StudentSummary     `json:"student"`
	Complaints []models.Complaint `json:"complaints"`
}

// StudentService backs the admin student views.
type StudentService struct {
	db         *gorm.DB
	complaints ComplaintStore
}

func NewStudentService(db *gorm.DB, complaints ComplaintStore) *StudentService {
	if db == nil {
		db = config.DB
	}
	return &StudentService{db: db, complaints: complaints}
}

type statusCountRow struct {
	UserID string
	Status models.ComplaintStatus
	Count  int
}

func (s *StudentService) List(ctx context.Context) ([]StudentSummary, error) {
	db := s.db.WithContext(ctx)

	var students []models.User
	if err := db.Where("role = ?", models.RoleStudent).Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, dependencyError("list students", err)
	}

	var counts []statusCountRow
	err := db.Model(&models.Complaint{}).
		Select("user_id, status, COUNT(*) AS count").
		Group("user_id, status").
		Scan(&counts).Error
	if err != nil {
		return nil, dependencyError("count complaints per student", err)
	}

	stats := make(map[string]*ComplaintStats, len(students))
	for _, row := range counts {
		st, ok := stats[row.UserID]
		if !ok {
			st = &ComplaintStats{}
			stats[row.UserID] = st
		}
		st.add(row.Status, row.Count)
	}

	out := make([]StudentSummary, 0, len(students))
	for _, u := range students {
		summary := StudentSummary{User: u}
		if st, ok := stats[u.UserID]; ok {
			summary.ComplaintStats = *st
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *StudentService) Detail(ctx context.Context, studentID string) (*StudentDetail, error) {
	var student models.User
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", studentID, models.RoleStudent).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dependencyError("load student", err)
	}

	complaints, err := s.complaints.List(ctx, ComplaintFilter{UserID: studentID})
	if err != nil {
		return nil, err
	}

	detail := &StudentDetail{
		Student:    StudentSummary{User: student},
		Complaints: complaints,
	}
	for _, c := range complaints {
		detail.Student.ComplaintStats.add(c.Status, 1)
	}
	return detail, nil
}
