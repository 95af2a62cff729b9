package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Email               string         `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name                string         `json:"name" gorm:"size:255;not null"`
	Password            string         `json:"-" gorm:"size:255;not null"`
	EmailVerifiedAt     *time.Time     `json:"email_verified_at"`
	VerificationToken   *string        `json:"-" gorm:"size:64;index"`
	ResetToken          *string        `json:"-" gorm:"size:64;index"`
	PasswordRequestedAt *time.Time     `json:"-"`
	LastLogin           *time.Time     `json:"last_login"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// IsPasswordRequestExpired reports whether the pending reset link is too old.
func (u *User) IsPasswordRequestExpired(ttl time.Duration) bool {
	if u.PasswordRequestedAt == nil {
		return true
	}
	return time.Since(*u.PasswordRequestedAt) > ttl
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	CallbackURL string `json:"callback_url" binding:"required"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type AuthResponse struct {
	TokenResponse
	User User `json:"user"`
}
