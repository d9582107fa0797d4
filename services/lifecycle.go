package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"hostel-complaint-api/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MaxComplaintImages    = 3
	MaxRejectionReasonLen = 200
)

// Principal is the authenticated caller of a lifecycle operation.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsAdmin() bool   { return p.Role == models.RoleAdmin }
func (p Principal) IsStudent() bool { return p.Role == models.RoleStudent }

// NewComplaintInput carries the student-supplied fields of a complaint.
// Images are storage keys already accepted by the upload collaborator.
type NewComplaintInput struct {
	Title        string                    `json:"title" binding:"required,max=200"`
	Description  string                    `json:"description" binding:"required,max=2000"`
	Images       []string                  `json:"images" binding:"max=3,dive,required"`
	Availability []models.AvailabilitySlot `json:"availability" binding:"dive"`
}

// LifecycleNotifier receives lifecycle events. *NotificationEmitter implements it.
type LifecycleNotifier interface {
	EmitNewComplaint(ctx context.Context, complaint *models.Complaint, adminIDs []string) error
	EmitStatusChange(ctx context.Context, complaint *models.Complaint, oldStatus, newStatus models.ComplaintStatus, reason string) error
}

// LifecycleEngine validates and applies complaint creation and status changes.
type LifecycleEngine struct {
	complaints ComplaintStore
	users      UserDirectory
	notifier   LifecycleNotifier
	activity   ActivityLogger
	validate   *validator.Validate
	now        func() time.Time
	newID      func() string

	background sync.WaitGroup
}

type LifecycleOption func(*LifecycleEngine)

func WithActivityLogger(l ActivityLogger) LifecycleOption {
	return func(e *LifecycleEngine) {
		if l != nil {
			e.activity = l
		}
	}
}

func WithClock(now func() time.Time) LifecycleOption {
	return func(e *LifecycleEngine) { e.now = now }
}

func WithIDGenerator(newID func() string) LifecycleOption {
	return func(e *LifecycleEngine) { e.newID = newID }
}

func NewLifecycleEngine(complaints ComplaintStore, users UserDirectory, notifier LifecycleNotifier, opts ...LifecycleOption) *LifecycleEngine {
	e := &LifecycleEngine{
		complaints: complaints,
		users:      users,
		notifier:   notifier,
		activity:   NopActivityLogger{},
		validate:   newInputValidator(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create files a new Open complaint for a student, snapshotting their profile.
// Admins are notified asynchronously; that fan-out never fails the call.
func (e *LifecycleEngine) Create(ctx context.Context, student Principal, input NewComplaintInput) (*models.Complaint, error) {
	if !student.IsStudent() {
		return nil, ErrForbidden
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if len(input.Images) > MaxComplaintImages {
		return nil, newValidationError("images", "must contain at most %d items", MaxComplaintImages)
	}
	for i := range input.Availability {
		slot := &input.Availability[i]
		slot.Date = strings.TrimSpace(slot.Date)
		slot.StartTime = strings.TrimSpace(slot.StartTime)
		slot.EndTime = strings.TrimSpace(slot.EndTime)
	}
	if err := e.validate.Struct(input); err != nil {
		return nil, validationFailure(err)
	}

	profile, err := e.users.GetProfile(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	changedBy := student.ID
	complaint := &models.Complaint{
		ComplaintID:  e.newID(),
		Title:        input.Title,
		Description:  input.Description,
		Hostel:       profile.Hostel,
		RoomNumber:   profile.RoomNumber,
		UserID:       profile.UserID,
		UserName:     profile.FullName,
		UserEmail:    profile.Email,
		Status:       models.StatusOpen,
		Images:       append([]string{}, input.Images...),
		Availability: append([]models.AvailabilitySlot{}, input.Availability...),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
		StatusHistory: []models.ComplaintStatusHistory{
			{Status: models.StatusOpen, ChangedBy: &changedBy, Timestamp: now},
		},
	}

	if err := e.complaints.Insert(ctx, complaint); err != nil {
		return nil, dependencyError("create complaint", err)
	}
	log.Printf("[lifecycle] complaint %s created by %s", complaint.ComplaintID, student.ID)

	snapshot := *complaint
	e.runInBackground(ctx, func(bg context.Context) {
		e.notifyAdmins(bg, &snapshot)
	})
	e.record(ctx, models.ActivityLog{
		Action:      ActionComplaintCreated,
		ComplaintID: complaint.ComplaintID,
		ActorID:     student.ID,
		ActorRole:   student.Role,
		ToStatus:    string(models.StatusOpen),
		CreatedAt:   now,
	})

	return complaint, nil
}

func (e *LifecycleEngine) notifyAdmins(ctx context.Context, complaint *models.Complaint) {
	adminIDs, err := e.users.AdminIDs(ctx)
	if err != nil {
		ReportError("notify", err)
		return
	}
	if err := e.notifier.EmitNewComplaint(ctx, complaint, adminIDs); err != nil {
		ReportError("notify", err)
	}
}

// Transition moves a complaint along the transition table.
func (e *LifecycleEngine) Transition(ctx context.Context, admin Principal, complaintID string, target models.ComplaintStatus) (*models.Complaint, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if !target.Valid() {
		return nil, newValidationError("status", "must be one of: %s", models.JoinStatuses(models.ComplaintStatuses))
	}

	complaint, err := e.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(complaint.Status, target); err != nil {
		return nil, err
	}

	now := e.changeTime(complaint)
	applied, err := e.complaints.ApplyStatusChange(ctx, StatusChange{
		ComplaintID:     complaint.ComplaintID,
		From:            complaint.Status,
		To:              target,
		ExpectedVersion: complaint.Version,
		ChangedBy:       admin.ID,
		At:              now,
	})
	if err != nil {
		return nil, dependencyError("change complaint status", err)
	}
	if !applied {
		return nil, e.staleTransition(ctx, complaintID, func(fresh *models.Complaint) error {
			return checkTransition(fresh.Status, target)
		})
	}

	oldStatus := complaint.Status
	applyLocally(complaint, target, admin.ID, now)
	log.Printf("[lifecycle] complaint %s %s -> %s by %s", complaint.ComplaintID, oldStatus, target, admin.ID)

	e.afterStatusChange(ctx, admin, complaint, oldStatus, "")
	return complaint, nil
}

// Reject closes a non-terminal complaint with a reason.
func (e *LifecycleEngine) Reject(ctx context.Context, admin Principal, complaintID, reason string) (*models.Complaint, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newValidationError("rejectionReason", "is required")
	}
	if utf8.RuneCountInString(reason) > MaxRejectionReasonLen {
		return nil, newValidationError("rejectionReason", "must be at most %d characters", MaxRejectionReasonLen)
	}

	complaint, err := e.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := checkRejectable(complaint.Status); err != nil {
		return nil, err
	}

	now := e.changeTime(complaint)
	applied, err := e.complaints.ApplyStatusChange(ctx, StatusChange{
		ComplaintID:     complaint.ComplaintID,
		From:            complaint.Status,
		To:              models.StatusRejected,
		ExpectedVersion: complaint.Version,
		ChangedBy:       admin.ID,
		At:              now,
		RejectionReason: &reason,
	})
	if err != nil {
		return nil, dependencyError("reject complaint", err)
	}
	if !applied {
		return nil, e.staleTransition(ctx, complaintID, func(fresh *models.Complaint) error {
			return checkRejectable(fresh.Status)
		})
	}

	oldStatus := complaint.Status
	applyLocally(complaint, models.StatusRejected, admin.ID, now)
	rejectedBy := admin.ID
	rejectedAt := now
	complaint.RejectionReason = &reason
	complaint.RejectedBy = &rejectedBy
	complaint.RejectedAt = &rejectedAt
	log.Printf("[lifecycle] complaint %s rejected by %s", complaint.ComplaintID, admin.ID)

	e.afterStatusChange(ctx, admin, complaint, oldStatus, reason)
	return complaint, nil
}

// Drain waits for background notification work, bounded by ctx.
func (e *LifecycleEngine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.background.Wait()
		if waiter, ok := e.notifier.(interface{ WaitForMail() }); ok {
			waiter.WaitForMail()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func checkTransition(from, to models.ComplaintStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to, Allowed: from.AllowedTargets()}
}

func checkRejectable(status models.ComplaintStatus) error {
	switch {
	case status == models.StatusRejected:
		return ErrAlreadyRejected
	case status == models.StatusResolved:
		return ErrResolvedNotRejectable
	case !status.CanReject():
		return &InvalidTransitionError{From: status, To: models.StatusRejected}
	}
	return nil
}

// staleTransition explains a lost optimistic update against the fresh row.
func (e *LifecycleEngine) staleTransition(ctx context.Context, complaintID string, check func(*models.Complaint) error) error {
	fresh, err := e.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return err
	}
	if err := check(fresh); err != nil {
		return err
	}
	return ErrConcurrentModification
}

// changeTime never precedes the complaint's latest history entry.
func (e *LifecycleEngine) changeTime(c *models.Complaint) time.Time {
	now := e.now()
	if n := len(c.StatusHistory); n > 0 && now.Before(c.StatusHistory[n-1].Timestamp) {
		return c.StatusHistory[n-1].Timestamp
	}
	return now
}

func applyLocally(c *models.Complaint, status models.ComplaintStatus, actorID string, at time.Time) {
	changedBy := actorID
	c.Status = status
	c.Version++
	c.UpdatedAt = at
	c.StatusHistory = append(c.StatusHistory, models.ComplaintStatusHistory{
		ComplaintID: c.ComplaintID,
		Status:      status,
		ChangedBy:   &changedBy,
		Timestamp:   at,
	})
}

// afterStatusChange runs the committed change's side effects. Neither can undo it.
func (e *LifecycleEngine) afterStatusChange(ctx context.Context, admin Principal, c *models.Complaint, oldStatus models.ComplaintStatus, reason string) {
	notifyCtx := persistentContext(ctx)
	if err := e.notifier.EmitStatusChange(notifyCtx, c, oldStatus, c.Status, reason); err != nil {
		ReportError("notify", err)
	}

	action := ActionComplaintStatus
	if c.Status == models.StatusRejected {
		action = ActionComplaintRejected
	}
	e.record(ctx, models.ActivityLog{
		Action:      action,
		ComplaintID: c.ComplaintID,
		ActorID:     admin.ID,
		ActorRole:   admin.Role,
		FromStatus:  string(oldStatus),
		ToStatus:    string(c.Status),
		Detail:      reason,
		CreatedAt:   c.UpdatedAt,
	})
}

func (e *LifecycleEngine) record(ctx context.Context, entry models.ActivityLog) {
	e.runInBackground(ctx, func(bg context.Context) {
		if err := e.activity.Record(bg, entry); err != nil {
			ReportError("activity", err)
		}
	})
}

func (e *LifecycleEngine) runInBackground(ctx context.Context, fn func(context.Context)) {
	bg, cancel := backgroundContext(ctx)
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				ReportError("lifecycle", errors.New("background task panicked"))
				log.Printf("[lifecycle] recovered background panic: %v", r)
			}
		}()
		fn(bg)
	}()
}
