package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aegis/internal/infrastructure/persistence/models"
)

// ErrNoCredentials is returned when a user has never set a password.
var ErrNoCredentials = errors.New("no credentials on record")

// CredentialStore keeps password hashes separate from the user aggregate;
// password auth is an edge concern and most users authenticate through
// character single sign-on instead.
type CredentialStore struct {
	db     *gorm.DB
	hasher *BcryptPasswordHasher
}

func NewCredentialStore(db *gorm.DB, hasher *BcryptPasswordHasher) *CredentialStore {
	return &CredentialStore{db: db, hasher: hasher}
}

// SetPassword hashes and stores the user's password, replacing any previous
// one.
func (s *CredentialStore) SetPassword(ctx context.Context, userID uint, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	model := models.CredentialModel{UserID: userID, PasswordHash: hash}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// VerifyPassword checks the password against the stored hash.
func (s *CredentialStore) VerifyPassword(ctx context.Context, userID uint, password string) error {
	var model models.CredentialModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCredentials
		}
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	return s.hasher.Verify(password, model.PasswordHash)
}
