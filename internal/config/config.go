package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Exchange rate source
	RateAPIURL   string
	RateCurrency string
	RateTimeout  time.Duration

	// Telegram bot
	BotToken   string
	APIBaseURL string
	PollTimeout time.Duration

	// AMQP mirror events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/vydatky.db"),

		RateAPIURL:   getEnv("RATE_API_URL", "https://api.privatbank.ua/p24api/pubinfo?json&exchange&coursid=5"),
		RateCurrency: getEnv("RATE_CURRENCY", "USD"),
		RateTimeout:  getEnvDuration("RATE_TIMEOUT", 10*time.Second),

		BotToken:    getEnv("BOT_TOKEN", ""),
		APIBaseURL:  getEnv("API_URL", "http://localhost:8081"),
		PollTimeout: getEnvDuration("BOT_POLL_TIMEOUT", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "vydatky"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Expenses"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if u, err := url.Parse(c.RateAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid rate API URL '%s'", c.RateAPIURL))
	}
	if strings.TrimSpace(c.RateCurrency) == "" {
		problems = append(problems, "rate currency code cannot be empty")
	}
	if c.RateTimeout < time.Second || c.RateTimeout > time.Minute {
		problems = append(problems, fmt.Sprintf("invalid rate timeout %v: must be between 1s and 1m", c.RateTimeout))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		problems = append(problems, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateBot adds the checks only the bot binary needs.
func (c *Config) ValidateBot() error {
	var problems []string

	if strings.TrimSpace(c.BotToken) == "" {
		problems = append(problems, "BOT_TOKEN is required")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
	}
	if c.PollTimeout < time.Second || c.PollTimeout > 5*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid poll timeout %v: must be between 1s and 5m", c.PollTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("bot configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
