package store

import (
	"context"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/conn"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
)

// Store is the gorm-backed persistence layer for strategies, orders and
// global settings.
type Store struct {
	db *gorm.DB
}

// New wraps an open PostgreSQL client.
func New(client *conn.Client) *Store {
	return &Store{db: client.DB()}
}

// Migrate creates or updates all tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&model.Strategy{},
		&model.WatchlistItem{},
		&model.Order{},
		&model.GlobalSettings{},
		&model.LogEntry{},
		&model.EquityCurve{},
	)
}

// CreateOrder persists one order record.
func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "create order")
	}
	return nil
}

// GlobalSettings returns the singleton settings row, creating the default
// row on first read.
func (s *Store) GlobalSettings(ctx context.Context) (model.GlobalSettings, error) {
	settings := model.GlobalSettings{ID: 1, PaperTrading: true, MaxDailyLossPct: 2, MaxPositions: 3, MaxCapitalPerTradePct: 10}
	err := s.db.WithContext(ctx).FirstOrCreate(&settings, model.GlobalSettings{ID: 1}).Error
	if err != nil {
		return model.GlobalSettings{}, errors.Wrap(err, "load global settings")
	}
	return settings, nil
}

// CountOpenPositions counts orders in an open status created at or after
// the given instant, typically the local day start.
func (s *Store) CountOpenPositions(ctx context.Context, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status IN ?", []enum.OrderStatus{enum.OrderStatusExecuted, enum.OrderStatusPending}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count open positions")
	}
	return int(count), nil
}

// EnabledStrategies lists strategies flagged for the cycle.
func (s *Store) EnabledStrategies(ctx context.Context) ([]model.Strategy, error) {
	var strategies []model.Strategy
	err := s.db.WithContext(ctx).Where("enabled = ?", true).Find(&strategies).Error
	if err != nil {
		return nil, errors.Wrap(err, "list enabled strategies")
	}
	return strategies, nil
}

// Watchlist lists the instruments a strategy monitors.
func (s *Store) Watchlist(ctx context.Context, strategyID uint) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem
	err := s.db.WithContext(ctx).Where("strategy_id = ?", strategyID).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "list watchlist")
	}
	return items, nil
}

// AppendLog writes an audit record. Audit writes are best effort and must
// not fail the operation being audited.
func (s *Store) AppendLog(ctx context.Context, level, source, message, extra string) {
	entry := model.LogEntry{Level: level, Source: source, Message: message, Extra: extra}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logs.Errorf("append audit log, err: %+v", err)
	}
}

// SetTradingEnabled flips the global kill switch.
func (s *Store) SetTradingEnabled(ctx context.Context, enabled bool) error {
	if _, err := s.GlobalSettings(ctx); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Model(&model.GlobalSettings{}).
		Where("id = ?", 1).
		Update("trading_enabled", enabled).Error
	if err != nil {
		return errors.Wrap(err, "set trading enabled")
	}
	return nil
}

// TogglePaperTrading flips paper mode and returns the new value.
func (s *Store) TogglePaperTrading(ctx context.Context) (bool, error) {
	settings, err := s.GlobalSettings(ctx)
	if err != nil {
		return false, err
	}
	next := !settings.PaperTrading
	err = s.db.WithContext(ctx).
		Model(&model.GlobalSettings{}).
		Where("id = ?", 1).
		Update("paper_trading", next).Error
	if err != nil {
		return false, errors.Wrap(err, "toggle paper trading")
	}
	return next, nil
}

// UpdateRiskSettings mutates the risk limits; nil fields are left as-is.
func (s *Store) UpdateRiskSettings(ctx context.Context, maxDailyLossPct *float64, maxPositions *int) error {
	if _, err := s.GlobalSettings(ctx); err != nil {
		return err
	}
	updates := map[string]any{}
	if maxDailyLossPct != nil {
		updates["max_daily_loss_pct"] = *maxDailyLossPct
	}
	if maxPositions != nil {
		updates["max_positions"] = *maxPositions
	}
	if len(updates) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&model.GlobalSettings{}).
		Where("id = ?", 1).
		Updates(updates).Error
	if err != nil {
		return errors.Wrap(err, "update risk settings")
	}
	return nil
}

// SetStrategyEnabled toggles one strategy's participation in the cycle.
func (s *Store) SetStrategyEnabled(ctx context.Context, strategyID uint, enabled bool) error {
	err := s.db.WithContext(ctx).
		Model(&model.Strategy{}).
		Where("id = ?", strategyID).
		Update("enabled", enabled).Error
	if err != nil {
		return errors.Wrap(err, "set strategy enabled")
	}
	return nil
}
