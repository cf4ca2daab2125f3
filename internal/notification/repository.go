// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines storage operations for notifications. CreateIfAbsent is
// the only way new rows appear; the read-state mutators are the only way
// existing rows change.
type Repository interface {
	// CreateIfAbsent inserts the notification unless a row with the same
	// dedupe key already exists. Returns false (and no error) on a dedupe hit.
	CreateIfAbsent(ctx context.Context, n *Notification) (bool, error)
	// MarkSent sets sent_at once; rows already marked are left untouched.
	MarkSent(ctx context.Context, notificationID uuid.UUID, at time.Time) error
	FindByID(ctx context.Context, notificationID, recipientID uuid.UUID) (*Notification, error)
	GetByRecipient(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// GORMRepository implements Repository using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// CreateIfAbsent performs a single insert guarded by the unique index on
// dedupe_key. The database serializes concurrent writers on that index, so no
// check-then-insert race exists.
func (r *GORMRepository) CreateIfAbsent(ctx context.Context, n *Notification) (bool, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedupe_key"}},
			DoNothing: true,
		}).
		Create(n)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create notification: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkSent advances the row from pending to sent. The sent_at IS NULL guard
// keeps the transition monotonic.
func (r *GORMRepository) MarkSent(ctx context.Context, notificationID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND sent_at IS NULL", notificationID).
		Update("sent_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s sent: %w", notificationID, result.Error)
	}
	return nil
}

// FindByID retrieves a notification by ID, ensuring it belongs to recipientID.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID, recipientID uuid.UUID) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %s for user %s: %w", notificationID, recipientID, err)
	}
	return &n, nil
}

// GetByRecipient retrieves a paginated list of the recipient's notifications,
// newest first.
func (r *GORMRepository) GetByRecipient(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", recipientID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", recipientID, err)
	}
	return notifications, pagination, nil
}

// CountUnread returns the number of unread notifications for the recipient.
func (r *GORMRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for user %s failed: %w", recipientID, err)
	}
	return count, nil
}

// MarkAsRead marks a specific notification as read for a recipient. Marking
// an already-read notification is a no-op, not an error.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	if _, err := r.FindByID(ctx, notificationID, recipientID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, recipientID, false).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, recipientID, result.Error)
	}
	return nil
}

// MarkAllAsRead marks all of the recipient's unread notifications as read in
// one bulk update and returns the number of rows updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", recipientID, result.Error)
	}
	return result.RowsAffected, nil
}
