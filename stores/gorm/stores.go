package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Amsiam/uauth"
)

// Open connects to a PostgreSQL database and runs migrations.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// AutoMigrate runs database migrations for all uauth tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&RefreshTokenModel{},
	)
}

// Store implements uauth.Store using GORM.
type Store struct {
	db *gorm.DB
}

var _ uauth.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*uauth.User, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uauth.ErrNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*uauth.User, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uauth.ErrNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *Store) CreateUser(ctx context.Context, user *uauth.User) error {
	return s.db.WithContext(ctx).Create(UserToModel(user)).Error
}

func (s *Store) SaveUser(ctx context.Context, user *uauth.User) error {
	return s.db.WithContext(ctx).Save(UserToModel(user)).Error
}

func (s *Store) GetRefreshToken(ctx context.Context, token string) (*uauth.RefreshToken, error) {
	var model RefreshTokenModel
	if err := s.db.WithContext(ctx).First(&model, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uauth.ErrNotFound
		}
		return nil, err
	}
	return model.ToRefreshToken(), nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *uauth.RefreshToken) error {
	return s.db.WithContext(ctx).Create(RefreshTokenToModel(token)).Error
}

func (s *Store) DeleteRefreshToken(ctx context.Context, token string) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&RefreshTokenModel{}, "token = ?", token)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&RefreshTokenModel{}, "user_id = ?", userID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
