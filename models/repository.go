package models

import (
	"context"
	"strings"
	"time"
)

// Role decides which dashboard a user sees.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganiser Role = "organiser"
)

// ParseRole accepts "user" as the legacy spelling of attendee.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attendee", "user", "":
		return RoleAttendee, true
	case "organiser", "organizer":
		return RoleOrganiser, true
	}
	return "", false
}

type Event struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Description  *string   `json:"description" bson:"description,omitempty"`
	EventImage   *string   `json:"event_image" bson:"event_image,omitempty"`
	StartDate    time.Time `json:"start_date" bson:"start_date"`
	EndDate      time.Time `json:"end_date" bson:"end_date"`
	Location     string    `json:"location" bson:"location"`
	MaxAttendees *int      `json:"max_attendees" bson:"max_attendees,omitempty"`
	OrganiserID  string    `json:"organiser_id" bson:"organiser_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// IsFull is vacuously false when the event has no capacity.
func (e Event) IsFull(count int) bool {
	return e.MaxAttendees != nil && count >= *e.MaxAttendees
}

// ===== Events =====
type EventRepository interface {
	ListUpcoming(ctx context.Context, limit int) ([]Event, error)
	ListByOrganiser(ctx context.Context, organiserID string) ([]Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) error
}

// ===== Users =====
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type UserRepository interface {
	// Create stores the identity and its single role row together.
	Create(ctx context.Context, u *User, role Role) error
	ValidateCredentials(ctx context.Context, email, plain string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

// ===== Roles =====
type RoleRepository interface {
	RoleFor(ctx context.Context, userID string) (Role, error)
}

// ===== Registrations =====
type RegistrationRepository interface {
	// Register fails with ErrAlreadyRegistered or, when capacity is set,
	// ErrEventFull.
	Register(ctx context.Context, eventID, userID string, capacity *int) error
	Unregister(ctx context.Context, eventID, userID string) error
	CountFor(ctx context.Context, eventID string) (int, error)
	IsRegistered(ctx context.Context, eventID, userID string) (bool, error)
	CountForMany(ctx context.Context, eventIDs []string) (int, error)
	CountsFor(ctx context.Context, eventIDs []string) (map[string]int, error)
	EventIDsFor(ctx context.Context, userID string) ([]string, error)
	DeleteForEvent(ctx context.Context, eventID string) error
}
