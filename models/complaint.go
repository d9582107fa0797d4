package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "Open"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusRejected   ComplaintStatus = "Rejected"
)

// ComplaintStatuses lists every status in display order.
var ComplaintStatuses = []ComplaintStatus{StatusOpen, StatusInProgress, StatusResolved, StatusRejected}

// complaintTransitions is the single transition table for complaints.
// Rejected is only entered through the reject action, which is legal from
// any non-terminal status.
var complaintTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {},
	StatusRejected:   {},
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	_, ok := complaintTransitions[s]
	return ok
}

// AllowedTargets returns the statuses reachable from s by a status update.
func (s ComplaintStatus) AllowedTargets() []ComplaintStatus {
	targets := complaintTransitions[s]
	out := make([]ComplaintStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransitionTo reports whether a status update from s to target is legal.
func (s ComplaintStatus) CanTransitionTo(target ComplaintStatus) bool {
	for _, allowed := range complaintTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further change is permitted from s.
func (s ComplaintStatus) IsTerminal() bool {
	return len(complaintTransitions[s]) == 0
}

// CanReject reports whether the reject action is legal from s.
func (s ComplaintStatus) CanReject() bool {
	return s.Valid() && !s.IsTerminal()
}

// JoinStatuses renders statuses for error messages, "None" when empty.
func JoinStatuses(statuses []ComplaintStatus) string {
	if len(statuses) == 0 {
		return "None"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Hostels accepted on complaints and student profiles.
var Hostels = []string{"Hostel A", "Hostel O", "Hostel M"}

// IsValidHostel reports whether name is one of Hostels.
func IsValidHostel(name string) bool {
	for _, h := range Hostels {
		if h == name {
			return true
		}
	}
	return false
}

// AvailabilitySlot is a time window in which the student can receive maintenance staff.
type AvailabilitySlot struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// Complaint represents the complaints table
type Complaint struct {
	ComplaintID string          `gorm:"primaryKey;column:complaint_id;type:varchar(36)" json:"_id"`
	Title       string          `gorm:"column:title;size:200;not null" json:"title"`
	Description string          `gorm:"column:description;size:2000;not null" json:"description"`
	Hostel      string          `gorm:"column:hostel;size:32" json:"hostel"`
	RoomNumber  string          `gorm:"column:room_number;size:32" json:"roomNumber"`
	UserID      string          `gorm:"column:user_id;type:varchar(36);index" json:"userId"`
	UserName    string          `gorm:"column:user_name" json:"userName"`
	UserEmail   string          `gorm:"column:user_email" json:"userEmail"`
	Status      ComplaintStatus `gorm:"column:status;size:20;index;default:'Open'" json:"status"`

	RejectionReason *string    `gorm:"column:rejection_reason;size:200" json:"rejectionReason,omitempty"`
	RejectedBy      *string    `gorm:"column:rejected_by;type:varchar(36)" json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`

	Images       datatypes.JSONSlice[string]           `gorm:"column:images" json:"images"`
	Availability datatypes.JSONSlice[AvailabilitySlot] `gorm:"column:availability" json:"availability"`

	Version   int       `gorm:"column:version;not null;default:1" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`

	StatusHistory []ComplaintStatusHistory `gorm:"foreignKey:ComplaintID;references:ComplaintID" json:"statusHistory"`
}

func (Complaint) TableName() string { return "complaints" }

// ComplaintStatusHistory is one append-only entry of a complaint's status ledger.
type ComplaintStatusHistory struct {
	HistoryID   uint            `gorm:"primaryKey;autoIncrement;column:history_id" json:"-"`
	ComplaintID string          `gorm:"column:complaint_id;type:varchar(36);index" json:"-"`
	Status      ComplaintStatus `gorm:"column:status;size:20" json:"status"`
	ChangedBy   *string         `gorm:"column:changed_by;type:varchar(36)" json:"-"`
	Timestamp   time.Time       `gorm:"column:created_at" json:"timestamp"`
}

func (ComplaintStatusHistory) TableName() string { return "complaint_status_history" }

// LastResolvedAt returns the timestamp of the most recent Resolved history entry.
func (c *Complaint) LastResolvedAt() (time.Time, bool) {
	for i := len(c.StatusHistory) - 1; i >= 0; i-- {
		if c.StatusHistory[i].Status == StatusResolved {
			return c.StatusHistory[i].Timestamp, true
		}
	}
	return time.Time{}, false
}
