package models

import (
	"time"

	"github.com/wms/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root.
type UserModel struct {
	AggregateModel
	Username          string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName       string        `gorm:"type:varchar(200)"`
	Email             string        `gorm:"type:varchar(200)"`
	PasswordHash      string        `gorm:"type:varchar(255);not null"`
	Role              identity.Role `gorm:"type:varchar(20);not null"`
	WarehouseCode     string        `gorm:"type:varchar(8)"`
	Active            bool          `gorm:"not null;default:true"`
	LastLoginAt       *time.Time
	FailedAttempts    int `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		WarehouseCode:     m.WarehouseCode,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		PasswordChangedAt: m.PasswordChangedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.WarehouseCode = u.WarehouseCode
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
