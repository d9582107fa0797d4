package models

import "time"

type NotificationType string

const (
	NotificationNewComplaint NotificationType = "NEW_COMPLAINT"
	NotificationStatusUpdate NotificationType = "STATUS_UPDATE"
)

type Notification struct {
	NotificationID string           `gorm:"primaryKey;column:notification_id;type:varchar(36)" json:"_id"`
	UserID         string           `gorm:"column:user_id;type:varchar(36);index:idx_notifications_user_created" json:"userId"`
	ComplaintID    string           `gorm:"column:complaint_id;type:varchar(36)" json:"complaintId"`
	ComplaintTitle string           `gorm:"column:complaint_title" json:"complaintTitle"`
	Type           NotificationType `gorm:"column:type;size:20" json:"type"`
	StudentName    *string          `gorm:"column:student_name" json:"studentName,omitempty"`
	OldStatus      *ComplaintStatus `gorm:"column:old_status;size:20" json:"oldStatus,omitempty"`
	NewStatus      *ComplaintStatus `gorm:"column:new_status;size:20" json:"newStatus,omitempty"`
	Message        string           `gorm:"column:message;size:500" json:"message"`
	Read           bool             `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt      time.Time        `gorm:"column:created_at;index:idx_notifications_user_created" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
