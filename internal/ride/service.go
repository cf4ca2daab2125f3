// File: internal/ride/service.go
package ride

import (
	"context"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives ride lifecycle hooks. Implementations must return
// quickly and must never fail the business mutation that fired them.
// Satisfied by notification.Emitter.
type Notifier interface {
	RideUpdated(ctx context.Context, rideID uuid.UUID, changedFields []string)
	RideCancelled(ctx context.Context, rideID uuid.UUID)
	ParticipantJoined(ctx context.Context, rideID, userID uuid.UUID)
	ParticipantLeft(ctx context.Context, rideID, userID uuid.UUID)
}

// Service is the slice of ride business logic that feeds the notification
// subsystem: organizer edits, cancellation, and RSVP changes. The wider ride
// CRUD/browse surface is owned by another part of the application.
type Service interface {
	UpdateRide(ctx context.Context, rideID, organizerID uuid.UUID, req UpdateRideRequest) (*Ride, error)
	CancelRide(ctx context.Context, rideID, organizerID uuid.UUID) error
	SetRSVP(ctx context.Context, rideID, userID uuid.UUID, status RSVPStatus) (*RSVP, error)
	RemoveRSVP(ctx context.Context, rideID, userID uuid.UUID) error
}

// ServiceImplementation implements the ride Service interface.
type ServiceImplementation struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a new ride service.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// UpdateRide applies the organizer's edits and notifies the roster. The
// notifier hook runs after the commit and cannot fail the update.
func (s *ServiceImplementation) UpdateRide(ctx context.Context, rideID, organizerID uuid.UUID, req UpdateRideRequest) (*Ride, error) {
	ride, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.OrganizerID != organizerID {
		return nil, common.ErrForbidden.WithDetails("Only the organizer can edit this ride.")
	}
	if ride.Status == StatusCancelled {
		return nil, common.ErrConflict.WithDetails("Cancelled rides cannot be edited.")
	}

	var changed []string
	if req.Title != nil && *req.Title != ride.Title {
		ride.Title = *req.Title
		changed = append(changed, "title")
	}
	if req.Description != nil && *req.Description != ride.Description {
		ride.Description = *req.Description
		changed = append(changed, "description")
	}
	if req.StartTime != nil && !req.StartTime.Equal(ride.StartTime) {
		ride.StartTime = *req.StartTime
		changed = append(changed, "start time")
	}
	if req.MeetingPoint != nil && *req.MeetingPoint != ride.MeetingPoint {
		ride.MeetingPoint = *req.MeetingPoint
		changed = append(changed, "meeting point")
	}
	if req.DistanceKM != nil {
		ride.DistanceKM = req.DistanceKM
		changed = append(changed, "distance")
	}
	if req.Pace != nil {
		ride.Pace = req.Pace
		changed = append(changed, "pace")
	}

	if len(changed) == 0 {
		return ride, nil
	}

	if err := s.repo.Update(ctx, ride); err != nil {
		s.logger.Error("Failed to update ride", zap.String("ride_id", rideID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not update ride.")
	}

	s.notifier.RideUpdated(ctx, rideID, changed)
	return ride, nil
}

// CancelRide marks the ride cancelled and notifies the roster.
func (s *ServiceImplementation) CancelRide(ctx context.Context, rideID, organizerID uuid.UUID) error {
	ride, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.OrganizerID != organizerID {
		return common.ErrForbidden.WithDetails("Only the organizer can cancel this ride.")
	}
	if ride.Status == StatusCancelled {
		return nil
	}

	ride.Status = StatusCancelled
	if err := s.repo.Update(ctx, ride); err != nil {
		s.logger.Error("Failed to cancel ride", zap.String("ride_id", rideID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not cancel ride.")
	}

	s.notifier.RideCancelled(ctx, rideID)
	return nil
}

// SetRSVP records the rider's answer. The organizer is notified on a
// transition into "going" and on a transition out of it; flapping between
// maybe and not_going stays silent.
func (s *ServiceImplementation) SetRSVP(ctx context.Context, rideID, userID uuid.UUID, status RSVPStatus) (*RSVP, error) {
	if _, err := s.repo.FindByID(ctx, rideID); err != nil {
		return nil, err
	}

	var previous RSVPStatus
	if existing, err := s.repo.FindRSVP(ctx, rideID, userID); err == nil {
		previous = existing.Status
	} else if _, ok := common.IsAPIError(err); !ok {
		return nil, common.ErrInternalServer.WithDetails("Could not look up RSVP.")
	}

	rsvp := &RSVP{RideID: rideID, UserID: userID, Status: status}
	if err := s.repo.UpsertRSVP(ctx, rsvp); err != nil {
		s.logger.Error("Failed to upsert RSVP",
			zap.String("ride_id", rideID.String()), zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not save RSVP.")
	}

	if status == RSVPGoing && previous != RSVPGoing {
		s.notifier.ParticipantJoined(ctx, rideID, userID)
	} else if status != RSVPGoing && previous == RSVPGoing {
		s.notifier.ParticipantLeft(ctx, rideID, userID)
	}
	return rsvp, nil
}

// RemoveRSVP deletes the rider's answer; dropping a "going" RSVP notifies the
// organizer.
func (s *ServiceImplementation) RemoveRSVP(ctx context.Context, rideID, userID uuid.UUID) error {
	existing, err := s.repo.FindRSVP(ctx, rideID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRSVP(ctx, rideID, userID); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to delete RSVP",
			zap.String("ride_id", rideID.String()), zap.String("user_id", userID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not remove RSVP.")
	}

	if existing.Status == RSVPGoing {
		s.notifier.ParticipantLeft(ctx, rideID, userID)
	}
	return nil
}
