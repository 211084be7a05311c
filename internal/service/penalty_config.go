package service

import (
	"context"
	"errors"
	"sync"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// PenaltyPerDaySetting is the settings row holding the overdue penalty rate.
const PenaltyPerDaySetting = "PENALTY_PER_DAY"

// PenaltyConfig holds the process-wide penalty rate. Reads use the in-memory
// copy; Update writes through to the store before swapping it. Other
// processes see the new rate after their next Refresh.
type PenaltyConfig struct {
	mu     sync.RWMutex
	perDay decimal.Decimal

	// writeMu serialises store round trips with the swap that follows, so
	// the in-memory rate always matches the last stored one. Readers only
	// take mu.
	writeMu  sync.Mutex
	settings repository.SettingsRepository
}

// LoadPenaltyConfig reads the stored rate, falling back to fallback when no
// row exists yet.
func LoadPenaltyConfig(ctx context.Context, settings repository.SettingsRepository, fallback decimal.Decimal) (*PenaltyConfig, error) {
	c := &PenaltyConfig{settings: settings, perDay: fallback}
	if err := c.Refresh(ctx); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.PersistenceFailure("load penalty rate", err)
		}
		logger.Warn("Penalty rate not configured, using default", "penalty_per_day", fallback.StringFixed(2))
	}
	return c, nil
}

// NewPenaltyConfig builds a config with a known rate without touching the store.
func NewPenaltyConfig(settings repository.SettingsRepository, perDay decimal.Decimal) *PenaltyConfig {
	return &PenaltyConfig{settings: settings, perDay: perDay}
}

func (c *PenaltyConfig) PerDay() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perDay
}

// Refresh reloads the rate from the store.
func (c *PenaltyConfig) Refresh(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	rate, err := c.settings.GetDecimal(ctx, PenaltyPerDaySetting)
	if err != nil {
		return err
	}
	c.set(rate)
	return nil
}

// Update validates and persists rate, then makes it visible to readers.
func (c *PenaltyConfig) Update(ctx context.Context, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.Errorf(domain.ErrInvalidRate, "penalty per day cannot be negative, got %s", rate.StringFixed(2))
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.settings.SetDecimal(ctx, PenaltyPerDaySetting, rate); err != nil {
		return domain.PersistenceFailure("save penalty rate", err)
	}
	c.set(rate)
	logger.Info("Penalty rate updated", "penalty_per_day", rate.StringFixed(2))
	return nil
}

func (c *PenaltyConfig) set(rate decimal.Decimal) {
	c.mu.Lock()
	c.perDay = rate
	c.mu.Unlock()
}
