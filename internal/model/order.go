package model

import (
	"time"

	"main/internal/model/enum"
)

// Order is the persisted record of one dispatched trade intent. Created
// exactly once per intent; only status transitions mutate it afterwards.
type Order struct {
	ID            uint             `gorm:"primaryKey"`
	StrategyID    *uint            `gorm:"index"`
	Symbol        string           `gorm:"size:50;not null"`
	Exchange      string           `gorm:"size:10;default:NSE"`
	Side          enum.Side        `gorm:"size:10;not null"`
	Qty           int              `gorm:"not null"`
	Price         float64
	OrderType     enum.OrderType   `gorm:"size:20;default:MARKET"`
	Product       enum.Product     `gorm:"size:20;default:INTRADAY"`
	StopLoss      *float64
	Target        *float64
	Status        enum.OrderStatus `gorm:"size:20;default:PENDING;index"`
	BrokerOrderID *string          `gorm:"size:100"`
	IsPaper       bool             `gorm:"default:true"`
	Notes         string           `gorm:"type:text"`
	CreatedAt     time.Time        `gorm:"index"`
	UpdatedAt     time.Time
}

// GlobalSettings is the singleton control row read at the top of every
// cycle. Only control operations write it.
type GlobalSettings struct {
	ID                    uint    `gorm:"primaryKey"`
	TradingEnabled        bool    `gorm:"default:false"`
	PaperTrading          bool    `gorm:"default:true"`
	MaxDailyLossPct       float64 `gorm:"default:2"`
	MaxPositions          int     `gorm:"default:3"`
	MaxCapitalPerTradePct float64 `gorm:"default:10"`
	UpdatedAt             time.Time
}

// LogEntry is a persisted audit record for cycle and broker events.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	Level     string    `gorm:"size:10;default:INFO"`
	Source    string    `gorm:"size:50;default:ENGINE"`
	Message   string    `gorm:"type:text;not null"`
	Extra     string    `gorm:"type:text"`
}

// EquityCurve is a periodic equity sample written by reconciliation.
type EquityCurve struct {
	ID            uint      `gorm:"primaryKey"`
	CreatedAt     time.Time `gorm:"index"`
	EquityValue   float64
	RealizedPnl   float64
	UnrealizedPnl float64
}
