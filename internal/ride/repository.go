// File: internal/ride/repository.go
package ride

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

// Repository defines the ride/RSVP data operations this subsystem needs:
// read-only scheduling queries for the reminder scanner, plus the minimal
// mutations exercised by the integration shim service.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	// FindStartingBetween returns scheduled rides with start_time in
	// [from, to), ordered soonest first and bounded to limit rows.
	FindStartingBetween(ctx context.Context, from, to time.Time, limit int) ([]Ride, error)
	// GetRoster returns the ride's RSVPs filtered to the given statuses; an
	// empty filter returns every RSVP. User rows are preloaded.
	GetRoster(ctx context.Context, rideID uuid.UUID, statuses ...RSVPStatus) ([]RSVP, error)
	Update(ctx context.Context, ride *Ride) error
	FindRSVP(ctx context.Context, rideID, userID uuid.UUID) (*RSVP, error)
	UpsertRSVP(ctx context.Context, rsvp *RSVP) error
	DeleteRSVP(ctx context.Context, rideID, userID uuid.UUID) error
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM ride repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) FindByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	var ride Ride
	err := r.db.WithContext(ctx).Preload("Organizer").First(&ride, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Ride not found.")
		}
		return nil, fmt.Errorf("failed to find ride %s: %w", id, err)
	}
	return &ride, nil
}

func (r *GORMRepository) FindStartingBetween(ctx context.Context, from, to time.Time, limit int) ([]Ride, error) {
	var rides []Ride
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Where("status = ? AND start_time >= ? AND start_time < ?", StatusScheduled, from, to).
		Order("start_time ASC").
		Limit(limit).
		Find(&rides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query rides starting between %s and %s: %w", from, to, err)
	}
	return rides, nil
}

func (r *GORMRepository) GetRoster(ctx context.Context, rideID uuid.UUID, statuses ...RSVPStatus) ([]RSVP, error) {
	query := r.db.WithContext(ctx).Preload("User").Where("ride_id = ?", rideID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var roster []RSVP
	if err := query.Find(&roster).Error; err != nil {
		return nil, fmt.Errorf("failed to load roster for ride %s: %w", rideID, err)
	}
	return roster, nil
}

func (r *GORMRepository) Update(ctx context.Context, ride *Ride) error {
	if err := r.db.WithContext(ctx).Save(ride).Error; err != nil {
		return fmt.Errorf("failed to update ride %s: %w", ride.ID, err)
	}
	return nil
}

func (r *GORMRepository) FindRSVP(ctx context.Context, rideID, userID uuid.UUID) (*RSVP, error) {
	var rsvp RSVP
	err := r.db.WithContext(ctx).
		Where("ride_id = ? AND user_id = ?", rideID, userID).
		First(&rsvp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("RSVP not found.")
		}
		return nil, fmt.Errorf("failed to find rsvp for ride %s user %s: %w", rideID, userID, err)
	}
	return &rsvp, nil
}

// UpsertRSVP inserts or updates the (ride, user) RSVP row in place, relying
// on the composite unique index.
func (r *GORMRepository) UpsertRSVP(ctx context.Context, rsvp *RSVP) error {
	if rsvp.ID == uuid.Nil {
		rsvp.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ride_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(rsvp).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp for ride %s user %s: %w", rsvp.RideID, rsvp.UserID, err)
	}
	return nil
}

func (r *GORMRepository) DeleteRSVP(ctx context.Context, rideID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("ride_id = ? AND user_id = ?", rideID, userID).
		Delete(&RSVP{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rsvp for ride %s user %s: %w", rideID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("RSVP not found.")
	}
	return nil
}
