package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
)

// Well-known setting keys
const (
	SettingDefaultGuarantors   = "loan.default_guarantors"
	SettingDefaultGraceDays    = "loan.default_grace_days"
	SettingSavingsInterestRate = "savings.interest_rate"
)

// SettingsService is a pull-through cache over sacco_settings. Reads
// hit the store once per key until Invalidate (or Set) clears the
// cached value. No hidden global state: inject it where needed.
type SettingsService struct {
	repo repositories.SettingsRepository
	log  *logrus.Entry

	mu    sync.RWMutex
	cache map[string]string
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo repositories.SettingsRepository) *SettingsService {
	return &SettingsService{
		repo:  repo,
		log:   logrus.WithField("service", "settings"),
		cache: make(map[string]string),
	}
}

// Get returns the setting value, falling back to def when the key is
// missing or the store read fails.
func (s *SettingsService) Get(ctx context.Context, key, def string) string {
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return def
	}

	s.mu.Lock()
	s.cache[key] = setting.Value
	s.mu.Unlock()

	return setting.Value
}

// GetInt returns the setting parsed as int
func (s *SettingsService) GetInt(ctx context.Context, key string, def int) int {
	v := s.Get(ctx, key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetDecimal returns the setting parsed as decimal
func (s *SettingsService) GetDecimal(ctx context.Context, key string, def decimal.Decimal) decimal.Decimal {
	v := s.Get(ctx, key, "")
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}

// Set writes the setting through to the store and refreshes the cache
func (s *SettingsService) Set(ctx context.Context, key, value, description string) error {
	err := s.repo.Upsert(ctx, &models.SaccoSetting{
		Key:         key,
		Value:       value,
		Description: description,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"key": key, "value": value}).Info("setting updated")
	return nil
}

// Invalidate drops one key from the cache
func (s *SettingsService) Invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

// InvalidateAll drops the whole cache
func (s *SettingsService) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// All lists every stored setting, bypassing the cache
func (s *SettingsService) All(ctx context.Context) ([]*models.SaccoSetting, error) {
	return s.repo.All(ctx)
}
