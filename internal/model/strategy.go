package model

// Strategy is a persisted strategy configuration. The cycle reads it,
// control operations mutate it.
type Strategy struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"size:100;uniqueIndex;not null"`
	Unit        string         `gorm:"size:100;not null"` // registry name of the strategy unit
	Description string         `gorm:"type:text"`
	Timeframe   string         `gorm:"size:10;default:1min"`
	Enabled     bool           `gorm:"default:false"`
	Params      map[string]any `gorm:"serializer:json"`

	Watchlist []WatchlistItem `gorm:"constraint:OnDelete:CASCADE"`
}

// WatchlistItem is one (symbol, exchange) pair monitored by a strategy.
type WatchlistItem struct {
	ID         uint   `gorm:"primaryKey"`
	StrategyID uint   `gorm:"index;not null"`
	Symbol     string `gorm:"size:50;not null"`
	Exchange   string `gorm:"size:10;default:NSE"`
	SecurityID string `gorm:"size:50"` // broker security id, falls back to Symbol when empty
}
