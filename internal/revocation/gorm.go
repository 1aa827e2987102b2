package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medconnect-server/internal/models"
)

// GormStore keeps revoked ids in the revoked_tokens table.
type GormStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, now: time.Now}
}

func (s *GormStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	row := models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt, CreatedAt: s.now()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *GormStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var row models.RevokedToken
	err := s.DB.WithContext(ctx).Where("jti = ? AND expires_at > ?", jti, s.now()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return true, nil
}

// Purge deletes rows whose tokens have expired.
func (s *GormStore) Purge(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
