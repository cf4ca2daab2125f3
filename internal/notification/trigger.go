// File: internal/notification/trigger.go
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyExists signals a dedupe hit: a notification for this trigger's
	// dedupe key already exists. Expected under concurrent triggers and
	// repeated reminder scans; never treated as a failure.
	ErrAlreadyExists = errors.New("notification already exists for dedupe key")

	// ErrInvalidTrigger signals a malformed trigger. Callers log and drop it;
	// retrying cannot fix malformed data.
	ErrInvalidTrigger = errors.New("invalid notification trigger")
)

// RideSnapshot is the denormalized ride state captured onto a notification at
// creation time. It stays meaningful if the ride is later changed or deleted.
type RideSnapshot struct {
	RideID        uuid.UUID
	Title         string
	StartTime     time.Time
	Location      string
	OrganizerName string
}

// Trigger describes "notify this recipient about that ride occurrence". It is
// the sole input of the notification writer.
type Trigger struct {
	RecipientID uuid.UUID
	Type        Type
	Title       string
	Message     string
	Ride        RideSnapshot
	// SendAt is the wall-clock time the notification becomes relevant. Zero
	// means "now" (instant triggers).
	SendAt time.Time
}

// Validate checks the trigger for the malformed-input cases that can reach us
// from external collaborators.
func (t Trigger) Validate() error {
	if t.RecipientID == uuid.Nil {
		return fmt.Errorf("%w: recipient id is required", ErrInvalidTrigger)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTrigger, string(t.Type))
	}
	if t.Ride.RideID == uuid.Nil {
		return fmt.Errorf("%w: ride id is required", ErrInvalidTrigger)
	}
	if t.Type == TypeEventReminder && t.Ride.StartTime.IsZero() {
		return fmt.Errorf("%w: reminder triggers require the ride start time", ErrInvalidTrigger)
	}
	return nil
}

// DedupeKey derives the deterministic composite key that makes creation
// at-most-once per logical occurrence.
//
// Reminder keys include the ride's start time as a bucket: if the start time
// moves, a fresh key (and hence a fresh reminder) is produced, and the caller
// supersedes the stale one with an event_updated notification instead.
func (t Trigger) DedupeKey() string {
	if t.Type == TypeEventReminder {
		return fmt.Sprintf("%s:%s:%s:%s",
			t.RecipientID, t.Ride.RideID, t.Type, t.Ride.StartTime.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s:%s:%s", t.RecipientID, t.Ride.RideID, t.Type)
}
