package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"hostel-complaint-api/models"

	"github.com/google/uuid"
)

// Mailer delivers HTML email. config.SMTPMailer is the production implementation.
type Mailer interface {
	SendMail(to []string, subject, html string) error
}

// NotificationEmitter records notifications caused by complaint lifecycle events.
// Only the database insert is reported back; live push and email are best-effort.
type NotificationEmitter struct {
	store    NotificationStore
	messages *MessageCatalog
	hub      NotificationHub
	mailer   Mailer
	now      func() time.Time
	mailWG   sync.WaitGroup
}

type EmitterOption func(*NotificationEmitter)

func WithNotificationHub(hub NotificationHub) EmitterOption {
	return func(e *NotificationEmitter) {
		if hub != nil {
			e.hub = hub
		}
	}
}

func WithMailer(m Mailer) EmitterOption {
	return func(e *NotificationEmitter) { e.mailer = m }
}

func WithEmitterClock(now func() time.Time) EmitterOption {
	return func(e *NotificationEmitter) { e.now = now }
}

func NewNotificationEmitter(store NotificationStore, messages *MessageCatalog, opts ...EmitterOption) *NotificationEmitter {
	e := &NotificationEmitter{
		store:    store,
		messages: messages,
		hub:      NopNotificationHub{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmitNewComplaint stores one NEW_COMPLAINT notification per admin in a single batch.
func (e *NotificationEmitter) EmitNewComplaint(ctx context.Context, complaint *models.Complaint, adminIDs []string) error {
	if len(adminIDs) == 0 {
		return nil
	}

	now := e.now()
	studentName := complaint.UserName
	message := e.messages.NewComplaintMessage(studentName, complaint.Title)
	batch := make([]models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		batch = append(batch, models.Notification{
			NotificationID: uuid.NewString(),
			UserID:         adminID,
			ComplaintID:    complaint.ComplaintID,
			ComplaintTitle: complaint.Title,
			Type:           models.NotificationNewComplaint,
			StudentName:    &studentName,
			Message:        message,
			CreatedAt:      now,
		})
	}

	if err := e.store.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("notify admins of complaint %s: %w", complaint.ComplaintID, err)
	}
	for i := range batch {
		e.publish(ctx, &batch[i])
	}
	return nil
}

// EmitStatusChange stores one STATUS_UPDATE notification for the complaint owner.
func (e *NotificationEmitter) EmitStatusChange(ctx context.Context, complaint *models.Complaint, oldStatus, newStatus models.ComplaintStatus, reason string) error {
	message := e.messages.StatusChangeMessage(complaint.Title, oldStatus, newStatus, reason)
	n := &models.Notification{
		NotificationID: uuid.NewString(),
		UserID:         complaint.UserID,
		ComplaintID:    complaint.ComplaintID,
		ComplaintTitle: complaint.Title,
		Type:           models.NotificationStatusUpdate,
		OldStatus:      &oldStatus,
		NewStatus:      &newStatus,
		Message:        message,
		CreatedAt:      e.now(),
	}

	if err := e.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("notify owner of complaint %s: %w", complaint.ComplaintID, err)
	}
	e.publish(ctx, n)
	e.mailOwner(complaint, message)
	return nil
}

func (e *NotificationEmitter) publish(ctx context.Context, n *models.Notification) {
	if err := e.hub.Publish(ctx, n); err != nil {
		log.Printf("[notify] live push to %s failed: %v", n.UserID, err)
	}
}

func (e *NotificationEmitter) mailOwner(complaint *models.Complaint, message string) {
	if e.mailer == nil || complaint.UserEmail == "" {
		return
	}
	subject, body := e.messages.StatusMail(complaint.UserName, complaint.Title, message)
	to := complaint.UserEmail
	e.mailWG.Add(1)
	go func() {
		defer e.mailWG.Done()
		if err := e.mailer.SendMail([]string{to}, subject, body); err != nil {
			log.Printf("[notify] status email to %s failed: %v", to, err)
		}
	}()
}

// WaitForMail blocks until queued status emails have been attempted.
func (e *NotificationEmitter) WaitForMail() {
	e.mailWG.Wait()
}
