// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type is the closed set of notification kinds. Every consumer switches over
// all five values.
type Type string

const (
	TypeEventReminder   Type = "event_reminder"
	TypeEventUpdated    Type = "event_updated"
	TypeEventCancelled  Type = "event_cancelled"
	TypeNewParticipant  Type = "new_participant"
	TypeParticipantLeft Type = "participant_left"
)

// Valid reports whether t is one of the known notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeEventReminder, TypeEventUpdated, TypeEventCancelled, TypeNewParticipant, TypeParticipantLeft:
		return true
	}
	return false
}

// Notification is a persisted user notification.
//
// The Ride* columns are a point-in-time snapshot of the triggering ride taken
// at creation. RideID is a lookup hint only — there is deliberately no
// foreign-key constraint, so deleting the ride leaves the notification intact
// and displayable from the snapshot.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient_created;index:idx_notifications_recipient_read" json:"recipient_id"`
	Type        Type      `gorm:"type:varchar(50);not null" json:"type"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Message     string    `gorm:"type:text;not null" json:"message"`

	RideID        *uuid.UUID `gorm:"type:uuid" json:"ride_id,omitempty"`
	RideTitle     *string    `gorm:"type:varchar(255)" json:"ride_title,omitempty"`
	RideStartTime *time.Time `json:"ride_start_time,omitempty"`
	RideLocation  *string    `gorm:"type:varchar(255)" json:"ride_location,omitempty"`
	OrganizerName *string    `gorm:"type:varchar(255)" json:"organizer_name,omitempty"`

	IsRead    bool      `gorm:"not null;default:false;index:idx_notifications_recipient_read" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_notifications_recipient_created" json:"created_at"`

	// SendAt is when the notification becomes relevant: start minus lead time
	// for reminders, equal to CreatedAt for instant triggers.
	SendAt time.Time `gorm:"not null" json:"send_at"`
	// SentAt is set once by the delivery marker and never cleared.
	SentAt *time.Time `json:"sent_at,omitempty"`

	// DedupeKey enforces at-most-once creation per logical occurrence. The
	// unique index is the single arbiter under concurrent writers.
	DedupeKey string `gorm:"type:varchar(512);not null;uniqueIndex:idx_notifications_dedupe_key" json:"-"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
