package model

import "time"

// Sender addresses used by the store
const (
	// DefaultSender is the column default when no sender is recorded
	DefaultSender = "default@demo.com"
	// OwnerSender is the sender stamped on emails created through the send operation
	OwnerSender = "you@mail.com"
)

// Email represents a simulated email record
type Email struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Sender    string    `json:"sender" gorm:"type:varchar(255);default:default@demo.com"`
	Recipient string    `json:"recipient" gorm:"type:varchar(255);not null;index"`
	Subject   string    `json:"subject" gorm:"type:varchar(255);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
}

// TableName specifies the table name for Email
func (Email) TableName() string {
	return "emails"
}
