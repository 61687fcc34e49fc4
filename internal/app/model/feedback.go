package model

import (
	"time"
)

// Feedback is a message submitted through the contact form. Signed-in users
// are linked via UserID; guests leave it nil.
type Feedback struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}
