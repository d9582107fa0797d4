package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ThaparUniversity requires a roll number on registration.
const ThaparUniversity = "Thapar Institute of Engineering and Technology"

type User struct {
	UserID     string    `gorm:"primaryKey;column:user_id;type:varchar(36)" json:"id"`
	FullName   string    `gorm:"column:full_name;not null" json:"fullName"`
	Email      string    `gorm:"column:email;unique;size:191" json:"email"`
	Password   string    `gorm:"column:password" json:"-"`
	University string    `gorm:"column:university" json:"university"`
	RollNumber *string   `gorm:"column:roll_number;size:9;uniqueIndex" json:"rollNumber,omitempty"`
	Hostel     string    `gorm:"column:hostel;size:32" json:"hostel"`
	RoomNumber string    `gorm:"column:room_number;size:32" json:"roomNumber"`
	Role       string    `gorm:"column:role;size:16;index;default:'student'" json:"role"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
