package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hostel-complaint-api/models"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
)

type fakeComplaints struct {
	mu   sync.Mutex
	rows map[string]*models.Complaint
}

func newFakeComplaints(rows ...models.Complaint) *fakeComplaints {
	f := &fakeComplaints{rows: map[string]*models.Complaint{}}
	for i := range rows {
		c := rows[i]
		f.rows[c.ComplaintID] = &c
	}
	return f
}

func (f *fakeComplaints) Insert(_ context.Context, c *models.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *c
	f.rows[c.ComplaintID] = &stored
	return nil
}

func (f *fakeComplaints) GetByID(_ context.Context, id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, services.ErrComplaintNotFound
	}
	out := *c
	out.StatusHistory = append([]models.ComplaintStatusHistory{}, c.StatusHistory...)
	return &out, nil
}

func (f *fakeComplaints) ApplyStatusChange(_ context.Context, ch services.StatusChange) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[ch.ComplaintID]
	if !ok || c.Status != ch.From || c.Version != ch.ExpectedVersion {
		return false, nil
	}
	changedBy := ch.ChangedBy
	c.Status = ch.To
	c.Version++
	c.UpdatedAt = ch.At
	c.RejectionReason = ch.RejectionReason
	c.StatusHistory = append(c.StatusHistory, models.ComplaintStatusHistory{Status: ch.To, ChangedBy: &changedBy, Timestamp: ch.At})
	return true, nil
}

func (f *fakeComplaints) List(_ context.Context, filter services.ComplaintFilter) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.rows {
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeComplaints) ListForAnalytics(ctx context.Context) ([]models.Complaint, error) {
	return f.List(ctx, services.ComplaintFilter{})
}

func (f *fakeComplaints) ImageOwner(_ context.Context, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		for _, img := range c.Images {
			if img == filename {
				return c.UserID, nil
			}
		}
	}
	return "", services.ErrComplaintNotFound
}

type fakeUsers map[string]*models.User

func (u fakeUsers) GetProfile(_ context.Context, id string) (*models.User, error) {
	if p, ok := u[id]; ok {
		return p, nil
	}
	return nil, services.ErrUserNotFound
}

func (u fakeUsers) AdminIDs(context.Context) ([]string, error) {
	var ids []string
	for id, p := range u {
		if p.Role == models.RoleAdmin {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type silentNotifier struct{}

func (silentNotifier) EmitNewComplaint(context.Context, *models.Complaint, []string) error {
	return nil
}

func (silentNotifier) EmitStatusChange(context.Context, *models.Complaint, models.ComplaintStatus, models.ComplaintStatus, string) error {
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memActivity) Record(_ context.Context, e models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memActivity) ForComplaint(_ context.Context, id string) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for _, e := range m.entries {
		if e.ComplaintID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

var controllerT0 = time.Date(2026, 4, 6, 9, 30, 0, 0, time.UTC)

func openComplaint(id, owner string, images ...string) models.Complaint {
	by := owner
	return models.Complaint{
		ComplaintID: id,
		Title:       "Leaking tap",
		Description: "Bathroom tap on floor 2 drips all night",
		Hostel:      "Hostel A",
		RoomNumber:  "204",
		UserID:      owner,
		UserName:    "Student " + owner,
		UserEmail:   owner + "@example.edu",
		Status:      models.StatusOpen,
		Images:      images,
		Version:     1,
		CreatedAt:   controllerT0,
		UpdatedAt:   controllerT0,
		StatusHistory: []models.ComplaintStatusHistory{
			{Status: models.StatusOpen, ChangedBy: &by, Timestamp: controllerT0},
		},
	}
}

func newTestEngine(store services.ComplaintStore, opts ...services.LifecycleOption) *services.LifecycleEngine {
	users := fakeUsers{
		"student-1": {UserID: "student-1", Role: models.RoleStudent, Hostel: "Hostel A", RoomNumber: "204"},
		"student-2": {UserID: "student-2", Role: models.RoleStudent, Hostel: "Hostel B", RoomNumber: "11"},
		"admin-1":   {UserID: "admin-1", Role: models.RoleAdmin},
	}
	opts = append([]services.LifecycleOption{
		services.WithClock(func() time.Time { return controllerT0.Add(time.Hour) }),
	}, opts...)
	return services.NewLifecycleEngine(store, users, silentNotifier{}, opts...)
}

// as stands in for AuthMiddleware with a fixed caller.
func as(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("role", role)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
