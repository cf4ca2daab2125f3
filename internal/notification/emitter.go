// File: internal/notification/emitter.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RideInfo is what the emitter needs to know about a ride to build triggers.
type RideInfo struct {
	Snapshot    RideSnapshot
	OrganizerID uuid.UUID
}

// RideSource provides read-only ride state to the emitter. Implemented by an
// adapter in the ride package so this package stays free of ride imports.
type RideSource interface {
	RideInfo(ctx context.Context, rideID uuid.UUID) (*RideInfo, error)
	// RosterUserIDs returns the IDs of users holding an RSVP on the ride,
	// filtered to the given statuses; an empty filter means any status.
	RosterUserIDs(ctx context.Context, rideID uuid.UUID, statuses ...string) ([]uuid.UUID, error)
}

// UserSource resolves display names for notification text.
type UserSource interface {
	UserDisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

// Emitter translates ride lifecycle changes into notification writer calls.
//
// Hooks are invoked synchronously from the ride handlers but never surface an
// error to them: a business mutation must not fail because notification
// creation failed. Per-recipient writes are independent; a failed one is
// logged and the rest of the fan-out continues.
type Emitter struct {
	service Service
	rides   RideSource
	users   UserSource
	logger  *zap.Logger
}

// NewEmitter creates a new trigger emitter.
func NewEmitter(service Service, rides RideSource, users UserSource, logger *zap.Logger) *Emitter {
	return &Emitter{
		service: service,
		rides:   rides,
		users:   users,
		logger:  logger.Named("NotificationEmitter"),
	}
}

// RideUpdated notifies every RSVP'd user except the organizer that ride
// details changed.
func (e *Emitter) RideUpdated(ctx context.Context, rideID uuid.UUID, changedFields []string) {
	info, err := e.rides.RideInfo(ctx, rideID)
	if err != nil {
		e.logger.Error("Cannot emit ride-updated notifications", zap.String("ride_id", rideID.String()), zap.Error(err))
		return
	}

	message := fmt.Sprintf("%q has been updated by %s.", info.Snapshot.Title, info.Snapshot.OrganizerName)
	if len(changedFields) > 0 {
		message = fmt.Sprintf("%q has been updated by %s (changed: %s).",
			info.Snapshot.Title, info.Snapshot.OrganizerName, strings.Join(changedFields, ", "))
	}

	e.fanOutToRoster(ctx, info, Trigger{
		Type:    TypeEventUpdated,
		Title:   "Ride updated",
		Message: message,
		Ride:    info.Snapshot,
	})
}

// RideCancelled notifies every RSVP'd user except the organizer that the ride
// was cancelled.
func (e *Emitter) RideCancelled(ctx context.Context, rideID uuid.UUID) {
	info, err := e.rides.RideInfo(ctx, rideID)
	if err != nil {
		e.logger.Error("Cannot emit ride-cancelled notifications", zap.String("ride_id", rideID.String()), zap.Error(err))
		return
	}

	e.fanOutToRoster(ctx, info, Trigger{
		Type:  TypeEventCancelled,
		Title: "Ride cancelled",
		Message: fmt.Sprintf("%q scheduled for %s has been cancelled.",
			info.Snapshot.Title, info.Snapshot.StartTime.Format("Mon, Jan 2 at 3:04 PM")),
		Ride: info.Snapshot,
	})
}

// ParticipantJoined notifies the organizer (and only the organizer) that a
// rider RSVP'd "going".
func (e *Emitter) ParticipantJoined(ctx context.Context, rideID, userID uuid.UUID) {
	e.notifyOrganizer(ctx, rideID, userID, TypeNewParticipant, "New participant",
		"%s is going on %q.")
}

// ParticipantLeft notifies the organizer that a rider dropped a "going" RSVP.
func (e *Emitter) ParticipantLeft(ctx context.Context, rideID, userID uuid.UUID) {
	e.notifyOrganizer(ctx, rideID, userID, TypeParticipantLeft, "Participant left",
		"%s is no longer going on %q.")
}

// fanOutToRoster issues one independent writer call per active RSVP holder,
// excluding the organizer. Partial failure is allowed: each pair is retryable
// on its own and one failure never rolls back the others.
func (e *Emitter) fanOutToRoster(ctx context.Context, info *RideInfo, base Trigger) {
	recipients, err := e.rides.RosterUserIDs(ctx, info.Snapshot.RideID)
	if err != nil {
		e.logger.Error("Cannot load roster for notification fan-out",
			zap.String("ride_id", info.Snapshot.RideID.String()), zap.Error(err))
		return
	}

	for _, recipientID := range recipients {
		if recipientID == info.OrganizerID {
			continue
		}
		trigger := base
		trigger.RecipientID = recipientID
		e.emit(ctx, trigger)
	}
}

func (e *Emitter) notifyOrganizer(ctx context.Context, rideID, participantID uuid.UUID, typ Type, title, messageFormat string) {
	info, err := e.rides.RideInfo(ctx, rideID)
	if err != nil {
		e.logger.Error("Cannot emit participant notification",
			zap.String("ride_id", rideID.String()), zap.String("type", string(typ)), zap.Error(err))
		return
	}

	name, err := e.users.UserDisplayName(ctx, participantID)
	if err != nil {
		e.logger.Warn("Cannot resolve participant name, using fallback",
			zap.String("user_id", participantID.String()), zap.Error(err))
		name = "A rider"
	}

	e.emit(ctx, Trigger{
		RecipientID: info.OrganizerID,
		Type:        typ,
		Title:       title,
		Message:     fmt.Sprintf(messageFormat, name, info.Snapshot.Title),
		Ride:        info.Snapshot,
	})
}

func (e *Emitter) emit(ctx context.Context, t Trigger) {
	_, err := e.service.CreateFromTrigger(ctx, t)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyExists):
		// Normal outcome under near-simultaneous triggers.
		e.logger.Debug("Notification deduplicated",
			zap.String("recipient_id", t.RecipientID.String()), zap.String("type", string(t.Type)))
	case errors.Is(err, ErrInvalidTrigger):
		e.logger.Error("Dropping malformed notification trigger",
			zap.String("type", string(t.Type)), zap.Error(err))
	default:
		// Transient storage failure; logged and left for an out-of-band retry.
		e.logger.Error("Failed to create notification",
			zap.String("recipient_id", t.RecipientID.String()),
			zap.String("type", string(t.Type)),
			zap.Error(err))
	}
}

// ReminderTrigger builds the event_reminder trigger for one (ride, recipient)
// pair; used by the reminder scanner.
func ReminderTrigger(snapshot RideSnapshot, recipientID uuid.UUID, leadTime time.Duration) Trigger {
	message := fmt.Sprintf("%q starts %s.", snapshot.Title, snapshot.StartTime.Format("Mon, Jan 2 at 3:04 PM"))
	if snapshot.Location != "" {
		message = fmt.Sprintf("%q starts %s at %s.",
			snapshot.Title, snapshot.StartTime.Format("Mon, Jan 2 at 3:04 PM"), snapshot.Location)
	}
	return Trigger{
		RecipientID: recipientID,
		Type:        TypeEventReminder,
		Title:       fmt.Sprintf("Ride reminder: %s", snapshot.Title),
		Message:     message,
		Ride:        snapshot,
		SendAt:      snapshot.StartTime.Add(-leadTime),
	}
}
