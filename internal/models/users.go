package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role: back-office role
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// AdminUser: table admin_users
type AdminUser struct {
	Base
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"type:varchar(16);not null;default:'editor'" json:"role"`
	Active       bool       `gorm:"not null" json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// HashPassword turns a plain password into a bcrypt hash
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword compares a password with its hash
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// AuditLog: table audit_logs
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	AdminID    uint      `gorm:"index" json:"admin_id"`
	AdminEmail string    `json:"admin_email"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	Entity     string    `gorm:"size:64;not null" json:"entity"`
	EntityID   string    `gorm:"size:128" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
}
