package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`

	// Monitoring active-hours window, local "HH:MM". Empty means the
	// 08:00-21:00 default applies.
	WakeTime  string `gorm:"column:wake_time" json:"wake_time,omitempty"`
	SleepTime string `gorm:"column:sleep_time" json:"sleep_time,omitempty"`

	// Bearer token for the external goal tracker, supplied by the user.
	TrackerToken string `gorm:"column:tracker_token" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
