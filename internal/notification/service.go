// File: internal/notification/service.go
package notification

import (
	"context"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the notification writer plus the recipient-facing query API.
//
// CreateFromTrigger is the single choke point through which every new
// notification row is created; the remaining methods are the only mutators of
// read state. The two paths touch disjoint fields, so the storage layer's
// row-level consistency is the only locking needed.
type Service interface {
	// CreateFromTrigger converts a trigger into a persisted, sent notification.
	// Returns ErrAlreadyExists on a dedupe hit and ErrInvalidTrigger for
	// malformed input; any other error is transient storage failure and safe
	// to retry (the dedupe key makes retries idempotent).
	CreateFromTrigger(ctx context.Context, t Trigger) (*Notification, error)

	GetNotificationsForUser(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// ServiceImplementation implements the notification Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateFromTrigger validates the trigger, inserts the notification guarded by
// the dedupe-key unique index, and immediately marks it delivered.
func (s *ServiceImplementation) CreateFromTrigger(ctx context.Context, t Trigger) (*Notification, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sendAt := t.SendAt
	if sendAt.IsZero() {
		sendAt = now
	}

	n := &Notification{
		RecipientID:   t.RecipientID,
		Type:          t.Type,
		Title:         t.Title,
		Message:       t.Message,
		RideID:        ptrUUID(t.Ride.RideID),
		RideTitle:     ptrString(t.Ride.Title),
		RideStartTime: ptrTime(t.Ride.StartTime),
		RideLocation:  ptrString(t.Ride.Location),
		OrganizerName: ptrString(t.Ride.OrganizerName),
		CreatedAt:     now,
		SendAt:        sendAt,
		DedupeKey:     t.DedupeKey(),
	}

	inserted, err := s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyExists
	}

	s.markDelivered(ctx, n)

	s.logger.Debug("Notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("type", string(n.Type)),
	)
	return n, nil
}

// markDelivered advances the freshly inserted row from pending to sent. There
// is no external delivery channel today, so this step cannot fail
// independently of the insert; it is kept as a named step so a push/email
// channel can slot in later without changing CreateFromTrigger's contract.
func (s *ServiceImplementation) markDelivered(ctx context.Context, n *Notification) {
	sentAt := s.now().UTC()
	if err := s.repo.MarkSent(ctx, n.ID, sentAt); err != nil {
		// The row exists and will be picked up by the in-app query API either
		// way; log and keep sent_at unset for the next retry path.
		s.logger.Error("Failed to mark notification sent",
			zap.String("notification_id", n.ID.String()), zap.Error(err))
		return
	}
	n.SentAt = &sentAt
}

// GetNotificationsForUser returns the recipient's notifications, newest first.
func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByRecipient(ctx, recipientID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to get notifications for user",
			zap.String("recipient_id", recipientID.String()), zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, pagination, nil
}

// CountUnread returns the recipient's unread notification count.
func (s *ServiceImplementation) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications",
			zap.String("recipient_id", recipientID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not count unread notifications.")
	}
	return count, nil
}

// MarkNotificationAsRead marks one notification read for its owner.
func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	err := s.repo.MarkAsRead(ctx, notificationID, recipientID)
	if err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification as read",
			zap.String("notification_id", notificationID.String()),
			zap.String("recipient_id", recipientID.String()),
			zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	return nil
}

// MarkAllUserNotificationsAsRead bulk-marks the recipient's unread
// notifications read and returns the updated count.
func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read",
			zap.String("recipient_id", recipientID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
