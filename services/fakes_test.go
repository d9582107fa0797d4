package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hostel-complaint-api/models"
)

// memComplaintStore is an in-memory ComplaintStore with the same conditional-update semantics.
type memComplaintStore struct {
	mu   sync.Mutex
	rows map[string]*models.Complaint

	insertErr error
	applyErr  error
	// beforeApply runs inside ApplyStatusChange before the version check.
	beforeApply func(row *models.Complaint)
}

func newMemComplaintStore() *memComplaintStore {
	return &memComplaintStore{rows: map[string]*models.Complaint{}}
}

func cloneComplaint(c *models.Complaint) *models.Complaint {
	out := *c
	out.Images = append([]string(nil), c.Images...)
	out.Availability = append([]models.AvailabilitySlot(nil), c.Availability...)
	out.StatusHistory = append([]models.ComplaintStatusHistory(nil), c.StatusHistory...)
	return &out
}

func (s *memComplaintStore) Insert(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	for i := range c.StatusHistory {
		c.StatusHistory[i].ComplaintID = c.ComplaintID
	}
	s.rows[c.ComplaintID] = cloneComplaint(c)
	return nil
}

func (s *memComplaintStore) GetByID(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	return cloneComplaint(row), nil
}

func (s *memComplaintStore) ApplyStatusChange(_ context.Context, change StatusChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return false, s.applyErr
	}
	row, ok := s.rows[change.ComplaintID]
	if !ok {
		return false, nil
	}
	if s.beforeApply != nil {
		s.beforeApply(row)
	}
	if row.Status != change.From || row.Version != change.ExpectedVersion {
		return false, nil
	}
	changedBy := change.ChangedBy
	row.Status = change.To
	row.Version++
	row.UpdatedAt = change.At
	if change.To == models.StatusRejected {
		row.RejectionReason = change.RejectionReason
		row.RejectedBy = &changedBy
		at := change.At
		row.RejectedAt = &at
	}
	row.StatusHistory = append(row.StatusHistory, models.ComplaintStatusHistory{
		ComplaintID: row.ComplaintID,
		Status:      change.To,
		ChangedBy:   &changedBy,
		Timestamp:   change.At,
	})
	return true, nil
}

func (s *memComplaintStore) List(_ context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, row := range s.rows {
		if filter.UserID != "" && row.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, *cloneComplaint(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memComplaintStore) ListForAnalytics(ctx context.Context) ([]models.Complaint, error) {
	return s.List(ctx, ComplaintFilter{})
}

func (s *memComplaintStore) ImageOwner(_ context.Context, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		for _, img := range row.Images {
			if img == filename {
				return row.UserID, nil
			}
		}
	}
	return "", ErrComplaintNotFound
}

func (s *memComplaintStore) snapshot(id string) *models.Complaint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneComplaint(s.rows[id])
}

type memUserDirectory struct {
	users    map[string]*models.User
	adminErr error
}

func newMemUserDirectory(users ...*models.User) *memUserDirectory {
	d := &memUserDirectory{users: map[string]*models.User{}}
	for _, u := range users {
		d.users[u.UserID] = u
	}
	return d
}

func (d *memUserDirectory) GetProfile(_ context.Context, id string) (*models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	profile := *u
	return &profile, nil
}

func (d *memUserDirectory) AdminIDs(context.Context) ([]string, error) {
	if d.adminErr != nil {
		return nil, d.adminErr
	}
	var ids []string
	for id, u := range d.users {
		if u.Role == models.RoleAdmin {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// memNotificationStore records inserts and can fail on demand.
type memNotificationStore struct {
	mu        sync.Mutex
	rows      []models.Notification
	insertErr error
}

func (s *memNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows = append(s.rows, *n)
	return nil
}

func (s *memNotificationStore) InsertMany(_ context.Context, ns []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows = append(s.rows, ns...)
	return nil
}

func (s *memNotificationStore) ListForUser(_ context.Context, userID string, opts NotificationListOptions) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.rows {
		if n.UserID == userID && (!opts.UnreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memNotificationStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, userID, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].NotificationID == id && s.rows[i].UserID == userID {
			s.rows[i].Read = true
			n := s.rows[i]
			return &n, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *memNotificationStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for i := range s.rows {
		if s.rows[i].UserID == userID && !s.rows[i].Read {
			s.rows[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *memNotificationStore) forUser(userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type recordingHub struct {
	mu        sync.Mutex
	published []*models.Notification
	err       error
}

func (h *recordingHub) Publish(_ context.Context, n *models.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, n)
	return h.err
}

func (h *recordingHub) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return nil, nil, errors.New("not supported")
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendMail(to []string, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: html})
	return m.err
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (a *recordingActivity) Record(_ context.Context, entry models.ActivityLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingActivity) ForComplaint(_ context.Context, id string) ([]models.ActivityLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.ActivityLog
	for _, e := range a.entries {
		if e.ComplaintID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// steppingClock returns start and advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}
