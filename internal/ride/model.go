// File: internal/ride/model.go
package ride

import (
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/user"

	"github.com/google/uuid"
)

// RideStatus is the lifecycle state of a group ride.
type RideStatus string

const (
	StatusScheduled RideStatus = "scheduled"
	StatusCancelled RideStatus = "cancelled"
	StatusCompleted RideStatus = "completed"
)

// RSVPStatus is a rider's attendance answer.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPNotGoing RSVPStatus = "not_going"
)

// Ride is a scheduled group ride. The full ride CRUD surface lives elsewhere;
// this model carries what the notification subsystem reads: identity, start
// time, display fields and the organizer.
type Ride struct {
	common.BaseModel
	OrganizerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer     *user.User `gorm:"foreignKey:OrganizerID;references:ID" json:"organizer,omitempty"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	StartTime     time.Time  `gorm:"not null;index" json:"start_time"`
	MeetingPoint  string     `gorm:"type:varchar(255)" json:"meeting_point"`
	DistanceKM    *float64   `gorm:"type:decimal(6,2)" json:"distance_km,omitempty"`
	Pace          *string    `gorm:"type:varchar(50)" json:"pace,omitempty"`
	Status        RideStatus `gorm:"type:varchar(50);not null;default:'scheduled';index" json:"status"`
}

// TableName specifies the table name for GORM.
func (Ride) TableName() string {
	return "rides"
}

// RSVP records a rider's answer for one ride; one row per (ride, user).
type RSVP struct {
	common.BaseModel
	RideID uuid.UUID  `gorm:"type:uuid;not null;index:idx_rsvps_ride_user,unique" json:"ride_id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index:idx_rsvps_ride_user,unique" json:"user_id"`
	User   *user.User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Status RSVPStatus `gorm:"type:varchar(50);not null" json:"status"`
}

// TableName specifies the table name for GORM.
func (RSVP) TableName() string {
	return "rsvps"
}

// UpdateRideRequest carries the organizer-editable ride fields.
type UpdateRideRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=3,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=5000"`
	StartTime    *time.Time `json:"start_time"`
	MeetingPoint *string    `json:"meeting_point" binding:"omitempty,max=255"`
	DistanceKM   *float64   `json:"distance_km" binding:"omitempty,gt=0"`
	Pace         *string    `json:"pace" binding:"omitempty,max=50"`
}
