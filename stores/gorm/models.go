package gorm

import (
	"time"

	"github.com/Amsiam/uauth"
)

// UserModel is the GORM model for users.
type UserModel struct {
	ID                  string    `gorm:"primaryKey;size:64"`
	Email               string    `gorm:"size:255;uniqueIndex;not null"`
	Name                string    `gorm:"size:255"`
	HashedPassword      string    `gorm:"size:128"`
	OAuthProvider       string    `gorm:"size:32"`
	OAuthProviderUserID string    `gorm:"size:255"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *uauth.User {
	return &uauth.User{
		ID:                  m.ID,
		Email:               m.Email,
		Name:                m.Name,
		HashedPassword:      m.HashedPassword,
		OAuthProvider:       m.OAuthProvider,
		OAuthProviderUserID: m.OAuthProviderUserID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func UserToModel(u *uauth.User) *UserModel {
	return &UserModel{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		HashedPassword:      u.HashedPassword,
		OAuthProvider:       u.OAuthProvider,
		OAuthProviderUserID: u.OAuthProviderUserID,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// RefreshTokenModel is the GORM model for refresh tokens.
type RefreshTokenModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:64;index;not null"`
	Token     string    `gorm:"size:128;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

func (m *RefreshTokenModel) ToRefreshToken() *uauth.RefreshToken {
	return &uauth.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func RefreshTokenToModel(t *uauth.RefreshToken) *RefreshTokenModel {
	return &RefreshTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}
