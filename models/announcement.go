package models

import "time"

// Announcement tags shown on the notice board.
var AnnouncementTags = []string{"Notice", "Maintenance", "Urgent", "Event", "General"}

// Announcement represents the announcements table
type Announcement struct {
	AnnouncementID string    `gorm:"primaryKey;column:announcement_id;type:varchar(36)" json:"_id"`
	Title          string    `gorm:"column:title;size:200;not null" json:"title"`
	Content        string    `gorm:"column:content;size:5000;not null" json:"content"`
	Tag            string    `gorm:"column:tag;size:20;default:'General'" json:"tag"`
	CreatedBy      string    `gorm:"column:created_by;type:varchar(36)" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`

	Creator User `gorm:"foreignKey:CreatedBy;references:UserID" json:"createdBy"`
}

func (Announcement) TableName() string { return "announcements" }

// AnnouncementView records that a user has seen an announcement.
type AnnouncementView struct {
	AnnouncementID string    `gorm:"primaryKey;column:announcement_id;type:varchar(36)"`
	UserID         string    `gorm:"primaryKey;column:user_id;type:varchar(36)"`
	SeenAt         time.Time `gorm:"column:seen_at"`
}

func (AnnouncementView) TableName() string { return "announcement_views" }

// IsValidAnnouncementTag reports whether tag is one of AnnouncementTags.
func IsValidAnnouncementTag(tag string) bool {
	for _, t := range AnnouncementTags {
		if t == tag {
			return true
		}
	}
	return false
}
