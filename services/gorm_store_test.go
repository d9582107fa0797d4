package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"hostel-complaint-api/models"
)

func TestApplyStatusChangeCommitsUpdateAndHistory(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `complaints` SET .*`version`=version \\+ 1.* WHERE complaint_id = \\? AND status = \\? AND version = \\?"),
			anyArgs: true,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `complaint_status_history`"),
			anyArgs: true,
			result:  scriptedResult{lastInsertID: 9, rowsAffected: 1},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	applied, err := store.ApplyStatusChange(context.Background(), StatusChange{
		ComplaintID:     "c-1",
		From:            models.StatusOpen,
		To:              models.StatusInProgress,
		ExpectedVersion: 1,
		ChangedBy:       "admin-1",
		At:              time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatalf("expected the change to apply")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
	if commits, rollbacks := state.txCounts(); commits != 1 || rollbacks != 0 {
		t.Fatalf("expected one commit, got commits=%d rollbacks=%d", commits, rollbacks)
	}
}

func TestApplyStatusChangeStaleVersionRollsBack(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `complaints` SET"),
			anyArgs: true,
			result:  scriptedResult{rowsAffected: 0},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	reason := "duplicate"
	applied, err := store.ApplyStatusChange(context.Background(), StatusChange{
		ComplaintID:     "c-1",
		From:            models.StatusOpen,
		To:              models.StatusRejected,
		ExpectedVersion: 3,
		ChangedBy:       "admin-1",
		At:              time.Now(),
		RejectionReason: &reason,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatalf("expected a stale update to report false")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
	if commits, rollbacks := state.txCounts(); commits != 0 || rollbacks != 1 {
		t.Fatalf("expected one rollback, got commits=%d rollbacks=%d", commits, rollbacks)
	}
}

func TestApplyStatusChangeHistoryFailureRollsBack(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `complaints` SET"),
			anyArgs: true,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `complaint_status_history`"),
			anyArgs: true,
			err:     errors.New("disk full"),
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	_, err := store.ApplyStatusChange(context.Background(), StatusChange{
		ComplaintID:     "c-1",
		From:            models.StatusInProgress,
		To:              models.StatusResolved,
		ExpectedVersion: 2,
		ChangedBy:       "admin-1",
		At:              time.Now(),
	})
	var depErr *DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, rollbacks := state.txCounts(); rollbacks != 1 {
		t.Fatalf("expected rollback after history failure")
	}
}

func TestInsertWritesComplaintAndOpeningEntry(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `complaints`"),
			anyArgs: true,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `complaint_status_history`"),
			anyArgs: true,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	complaint := &models.Complaint{
		ComplaintID: "c-9",
		Title:       "Leaking tap",
		Description: "Bathroom tap leaks all night",
		UserID:      "student-1",
		Status:      models.StatusOpen,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		StatusHistory: []models.ComplaintStatusHistory{
			{Status: models.StatusOpen, Timestamp: now},
		},
	}
	if err := store.Insert(context.Background(), complaint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complaint.StatusHistory[0].ComplaintID != "c-9" {
		t.Fatalf("history entry not linked to complaint, got %q", complaint.StatusHistory[0].ComplaintID)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestGetByIDMissingComplaint(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `complaints` WHERE complaint_id = \\?"),
			anyArgs: true,
			columns: []string{"complaint_id", "title", "status"},
			rows:    [][]driver.Value{},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrComplaintNotFound) {
		t.Fatalf("expected ErrComplaintNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestGetByIDLoadsOrderedHistory(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `complaints` WHERE complaint_id = \\?"),
			anyArgs: true,
			columns: []string{"complaint_id", "title", "status", "user_id", "version", "images", "created_at", "updated_at"},
			rows: [][]driver.Value{{
				"c-1", "Broken fan", "In Progress", "student-1", int64(2), []byte(`["complaint-a.jpg"]`), created, created.Add(time.Hour),
			}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `complaint_status_history` WHERE .*complaint_id.* ORDER BY created_at ASC, history_id ASC"),
			anyArgs: true,
			columns: []string{"history_id", "complaint_id", "status", "changed_by", "created_at"},
			rows: [][]driver.Value{
				{int64(1), "c-1", "Open", nil, created},
				{int64(2), "c-1", "In Progress", "admin-1", created.Add(time.Hour)},
			},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	complaint, err := store.GetByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complaint.Status != models.StatusInProgress || complaint.Version != 2 {
		t.Fatalf("unexpected complaint: %+v", complaint)
	}
	if len(complaint.Images) != 1 || complaint.Images[0] != "complaint-a.jpg" {
		t.Fatalf("unexpected images: %v", complaint.Images)
	}
	if len(complaint.StatusHistory) != 2 || complaint.StatusHistory[1].Status != models.StatusInProgress {
		t.Fatalf("unexpected history: %+v", complaint.StatusHistory)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestImageOwnerMatchesJSONColumn(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT `?user_id`? FROM `complaints` WHERE JSON_CONTAINS\\(images, JSON_QUOTE\\(\\?\\)\\)"),
			anyArgs: true,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{{"student-7"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("JSON_CONTAINS"),
			anyArgs: true,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	owner, err := store.ImageOwner(context.Background(), "complaint-a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "student-7" {
		t.Fatalf("expected student-7, got %q", owner)
	}

	if _, err := store.ImageOwner(context.Background(), "complaint-unknown.jpg"); !errors.Is(err, ErrComplaintNotFound) {
		t.Fatalf("expected ErrComplaintNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAdminIDsPlucksAdminRole(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT `user_id` FROM `users` WHERE role = \\?"),
			args:    []driver.Value{models.RoleAdmin},
			columns: []string{"user_id"},
			rows:    [][]driver.Value{{"admin-1"}, {"admin-2"}},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	dir := NewGormUserDirectory(db)

	ids, err := dir.AdminIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "admin-1" || ids[1] != "admin-2" {
		t.Fatalf("unexpected admin ids: %v", ids)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestMarkReadRejectsOtherUsersNotification(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `notifications` WHERE notification_id = \\? AND user_id = \\?"),
			anyArgs: true,
			columns: []string{"notification_id", "user_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state := newScriptedGormDB(t, steps)
	store := NewGormNotificationStore(db)

	if _, err := store.MarkRead(context.Background(), "student-2", "n-1"); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestListWrapsDriverFailure(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `complaints`"),
			anyArgs: true,
			err:     errors.New("connection reset"),
		},
	}

	db, _ := newScriptedGormDB(t, steps)
	store := NewGormComplaintStore(db)

	_, err := store.List(context.Background(), ComplaintFilter{UserID: "student-1"})
	var depErr *DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if depErr.Op != "list complaints" {
		t.Fatalf("unexpected op %q", depErr.Op)
	}
}
