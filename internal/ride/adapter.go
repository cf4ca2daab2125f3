// File: internal/ride/adapter.go
package ride

import (
	"context"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/notification"

	"github.com/google/uuid"
)

// NotificationAdapter exposes ride data through the narrow read-only
// interface the notification emitter depends on.
type NotificationAdapter struct {
	repo Repository
}

// NewNotificationAdapter creates the notification.RideSource adapter.
func NewNotificationAdapter(repo Repository) *NotificationAdapter {
	return &NotificationAdapter{repo: repo}
}

var _ notification.RideSource = (*NotificationAdapter)(nil)

// RideInfo loads the ride and flattens it into the snapshot the emitter
// stores on notifications.
func (a *NotificationAdapter) RideInfo(ctx context.Context, rideID uuid.UUID) (*notification.RideInfo, error) {
	ride, err := a.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	return &notification.RideInfo{
		Snapshot:    Snapshot(ride),
		OrganizerID: ride.OrganizerID,
	}, nil
}

// RosterUserIDs returns the IDs of RSVP holders on the ride, optionally
// filtered by status.
func (a *NotificationAdapter) RosterUserIDs(ctx context.Context, rideID uuid.UUID, statuses ...string) ([]uuid.UUID, error) {
	filter := make([]RSVPStatus, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, RSVPStatus(s))
	}

	roster, err := a.repo.GetRoster(ctx, rideID, filter...)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(roster))
	for _, rsvp := range roster {
		ids = append(ids, rsvp.UserID)
	}
	return ids, nil
}

// Snapshot captures the ride's display fields as they are right now.
func Snapshot(ride *Ride) notification.RideSnapshot {
	organizerName := ""
	if ride.Organizer != nil {
		organizerName = ride.Organizer.DisplayName()
	}
	return notification.RideSnapshot{
		RideID:        ride.ID,
		Title:         ride.Title,
		StartTime:     ride.StartTime,
		Location:      ride.MeetingPoint,
		OrganizerName: organizerName,
	}
}
