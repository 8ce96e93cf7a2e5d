package identity

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User event type constants
const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserStatusChanged   = "UserStatusChanged"
)

// UserCreatedEvent is raised when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
		Role:            u.Role,
	}
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// UserPasswordChangedEvent is raised when a user's password changes
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// NewUserPasswordChangedEvent creates a new UserPasswordChangedEvent
func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, u.ID, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}

// EventType returns the event type name
func (e *UserPasswordChangedEvent) EventType() string {
	return EventTypeUserPasswordChanged
}

// UserStatusChangedEvent is raised when a user is activated or deactivated
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Active   bool      `json:"active"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(u *User, active bool) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, u.ID, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
		Active:          active,
	}
}

// EventType returns the event type name
func (e *UserStatusChangedEvent) EventType() string {
	return EventTypeUserStatusChanged
}
