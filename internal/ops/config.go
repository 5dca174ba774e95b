package ops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"main/internal/broker/dhan"
	"main/internal/market"
	"main/pkg/conn"

	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the config file layout. JSON is the default; a .yaml
// or .yml extension switches the decoder.
type FileConfig struct {
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Broker    BrokerConfig    `json:"broker" yaml:"broker"`
	Market    MarketConfig    `json:"market" yaml:"market"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Profiler  ProfilerConfig  `json:"profiler" yaml:"profiler"`
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	URL      string `json:"url" yaml:"url"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`
}

// BrokerConfig describes the Dhan API binding.
type BrokerConfig struct {
	BaseURL        string `json:"baseUrl" yaml:"baseUrl"`
	ClientID       string `json:"clientId" yaml:"clientId"`
	AccessToken    string `json:"accessToken" yaml:"accessToken"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// MarketConfig describes the trading session window.
type MarketConfig struct {
	Timezone    string `json:"timezone" yaml:"timezone"`
	OpenHour    int    `json:"openHour" yaml:"openHour"`
	OpenMinute  int    `json:"openMinute" yaml:"openMinute"`
	CloseHour   int    `json:"closeHour" yaml:"closeHour"`
	CloseMinute int    `json:"closeMinute" yaml:"closeMinute"`
}

// SchedulerConfig describes the cycle cadence.
type SchedulerConfig struct {
	IntervalSeconds int `json:"intervalSeconds" yaml:"intervalSeconds"`
	OffsetSeconds   int `json:"offsetSeconds" yaml:"offsetSeconds"`
}

// ProfilerConfig enables the optional pyroscope profiler.
type ProfilerConfig struct {
	ServerAddress   string `json:"serverAddress" yaml:"serverAddress"`
	ApplicationName string `json:"applicationName" yaml:"applicationName"`
}

// Loaded is the resolved configuration ready for wiring.
type Loaded struct {
	Database conn.Option
	Broker   dhan.Config
	Calendar *market.Calendar
	Interval time.Duration
	Offset   time.Duration
	Profiler ProfilerConfig
}

// Load reads a config file, applies environment overrides and resolves the
// result. An empty path loads defaults plus environment only. A .env file
// in the working directory is honored when present.
func Load(path string) (Loaded, error) {
	_ = godotenv.Load()

	cfg := defaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, errors.Wrap(err, "read config")
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &cfg)
		default:
			err = json.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Loaded{}, errors.Wrap(err, "parse config")
		}
	}
	applyEnv(&cfg)
	return resolve(cfg)
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "algo",
		},
		Market: MarketConfig{
			Timezone:    "Asia/Kolkata",
			OpenHour:    9,
			OpenMinute:  15,
			CloseHour:   15,
			CloseMinute: 30,
		},
		Scheduler: SchedulerConfig{
			IntervalSeconds: 60,
			OffsetSeconds:   5,
		},
		Broker: BrokerConfig{
			TimeoutSeconds: 30,
		},
	}
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DHAN_BASE_URL"); v != "" {
		cfg.Broker.BaseURL = v
	}
	if v := os.Getenv("DHAN_CLIENT_ID"); v != "" {
		cfg.Broker.ClientID = v
	}
	if v := os.Getenv("DHAN_ACCESS_TOKEN"); v != "" {
		cfg.Broker.AccessToken = v
	}
	if v := os.Getenv("PYROSCOPE_SERVER"); v != "" {
		cfg.Profiler.ServerAddress = v
	}
}

func resolve(cfg FileConfig) (Loaded, error) {
	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "load timezone "+cfg.Market.Timezone)
	}

	open := market.Minute(cfg.Market.OpenHour, cfg.Market.OpenMinute)
	close := market.Minute(cfg.Market.CloseHour, cfg.Market.CloseMinute)
	if err := validateSession(open, close); err != nil {
		return Loaded{}, err
	}

	if cfg.Scheduler.IntervalSeconds <= 0 {
		return Loaded{}, errors.New("scheduler interval must be > 0, got " + strconv.Itoa(cfg.Scheduler.IntervalSeconds))
	}
	if cfg.Scheduler.OffsetSeconds < 0 || cfg.Scheduler.OffsetSeconds >= cfg.Scheduler.IntervalSeconds {
		return Loaded{}, errors.New("scheduler offset must be in [0, interval)")
	}

	return Loaded{
		Database: conn.Option{
			ConnString: cfg.Database.URL,
			Host:       cfg.Database.Host,
			Port:       cfg.Database.Port,
			User:       cfg.Database.User,
			Password:   cfg.Database.Password,
			Database:   cfg.Database.Database,
			SSLMode:    cfg.Database.SSLMode,
		},
		Broker: dhan.Config{
			BaseURL:     cfg.Broker.BaseURL,
			ClientID:    cfg.Broker.ClientID,
			AccessToken: cfg.Broker.AccessToken,
			Timeout:     time.Duration(cfg.Broker.TimeoutSeconds) * time.Second,
		},
		Calendar: market.NewCalendar(loc, open, close),
		Interval: time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second,
		Offset:   time.Duration(cfg.Scheduler.OffsetSeconds) * time.Second,
		Profiler: cfg.Profiler,
	}, nil
}

func validateSession(open, close market.MinuteOfDay) error {
	if open < 0 || close < 0 || open >= market.Minute(24, 0) || close >= market.Minute(24, 0) {
		return errors.New("market hours out of range")
	}
	if open >= close {
		return errors.New("market open must precede close")
	}
	return nil
}
