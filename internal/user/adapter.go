// File: internal/user/adapter.go
package user

import (
	"context"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/notification"

	"github.com/google/uuid"
)

// NotificationAdapter resolves user display names for notification text.
type NotificationAdapter struct {
	repo Repository
}

// NewNotificationAdapter creates the notification.UserSource adapter.
func NewNotificationAdapter(repo Repository) *NotificationAdapter {
	return &NotificationAdapter{repo: repo}
}

var _ notification.UserSource = (*NotificationAdapter)(nil)

func (a *NotificationAdapter) UserDisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := a.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.DisplayName(), nil
}
