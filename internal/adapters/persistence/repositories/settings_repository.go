package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// settingsRepository implements SettingsRepository
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get gets a setting by key
func (r *settingsRepository) Get(ctx context.Context, key string) (*models.SaccoSetting, error) {
	var setting models.SaccoSetting
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert inserts or updates a setting by key
func (r *settingsRepository) Upsert(ctx context.Context, setting *models.SaccoSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description"}),
		}).
		Create(setting).Error
}

// All lists all settings
func (r *settingsRepository) All(ctx context.Context) ([]*models.SaccoSetting, error) {
	var settings []*models.SaccoSetting
	err := r.db.WithContext(ctx).Order("`key` ASC").Find(&settings).Error
	return settings, err
}
