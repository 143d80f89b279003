package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

const (
	xdgAppName = "tasksync"
	configName = "config"
	ledgerFile = "ledger.db"
)

// ErrMissing is wrapped by validation errors for unset required keys.
var ErrMissing = errors.New("required configuration missing")

// Config is loaded once at process start and passed by value afterwards.
type Config struct {
	NotionToken      string
	NotionTaskDB     string
	NotionProjectDB  string
	NotionSprintDB   string
	NotionReviewDB   string
	NotionRateLimit  float64
	WorkDateProperty string

	CalendarID         string
	ReportCalendarIDs  []string
	ServiceAccountFile string

	GeminiAPIKey string
	GeminiModel  string

	LineToken     string
	LineRecipient string

	LookaheadDays       int
	CurrentSprintStatus string
	StatusLabels        model.StatusLabels

	Location   *time.Location
	LedgerPath string
	RunTimeout time.Duration
	LogLevel   string
	LogFormat  string
}

// GetConfigDir returns ~/.config/tasksync.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Load reads .env (if present), an optional config file from the config dir and the
// process environment, in increasing order of precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if dir, err := GetConfigDir(); err == nil {
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("google_service_account_file", "service_account.json")
	v.SetDefault("google_calendar_ids", "primary")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("notion_rate_limit", 3.0)
	v.SetDefault("notion_work_date_property", "作業日")
	v.SetDefault("notify_lookahead_days", 1)
	v.SetDefault("current_sprint_status", "current")
	v.SetDefault("status_not_started", model.NOT_STARTED)
	v.SetDefault("status_in_progress", model.IN_PROGRESS)
	v.SetDefault("status_done", model.DONE)
	v.SetDefault("status_on_hold", model.ON_HOLD)
	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("run_timeout", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	if dir, err := GetConfigDir(); err == nil {
		v.SetDefault("ledger_path", filepath.Join(dir, ledgerFile))
	} else {
		v.SetDefault("ledger_path", ledgerFile)
	}
}

func fromViper(v *viper.Viper) (Config, error) {
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := Config{
		NotionToken:      v.GetString("notion_token"),
		NotionTaskDB:     v.GetString("notion_task_id"),
		NotionProjectDB:  v.GetString("notion_pj_id"),
		NotionSprintDB:   v.GetString("notion_sprint_id"),
		NotionReviewDB:   v.GetString("notion_review_database_id"),
		NotionRateLimit:  v.GetFloat64("notion_rate_limit"),
		WorkDateProperty: v.GetString("notion_work_date_property"),

		CalendarID:         v.GetString("google_calendar_id"),
		ReportCalendarIDs:  splitList(v.GetString("google_calendar_ids")),
		ServiceAccountFile: v.GetString("google_service_account_file"),

		GeminiAPIKey: v.GetString("google_api_key"),
		GeminiModel:  v.GetString("gemini_model"),

		LineToken:     v.GetString("line_channel_access_token"),
		LineRecipient: v.GetString("line_message_api_group_id"),

		LookaheadDays:       v.GetInt("notify_lookahead_days"),
		CurrentSprintStatus: v.GetString("current_sprint_status"),
		StatusLabels: model.StatusLabels{
			NotStarted: v.GetString("status_not_started"),
			InProgress: v.GetString("status_in_progress"),
			Done:       v.GetString("status_done"),
			OnHold:     v.GetString("status_on_hold"),
		},

		Location:   loc,
		LedgerPath: v.GetString("ledger_path"),
		RunTimeout: v.GetDuration("run_timeout"),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
	}
	if cfg.LookaheadDays < 0 {
		return Config{}, fmt.Errorf("NOTIFY_LOOKAHEAD_DAYS must not be negative, got %d", cfg.LookaheadDays)
	}
	return cfg, nil
}

// RequireSync checks the keys the sync binary needs.
func (c Config) RequireSync() error {
	return require(map[string]string{
		"NOTION_TOKEN":                c.NotionToken,
		"NOTION_TASK_ID":              c.NotionTaskDB,
		"NOTION_PJ_ID":                c.NotionProjectDB,
		"NOTION_SPRINT_ID":            c.NotionSprintDB,
		"GOOGLE_CALENDAR_ID":          c.CalendarID,
		"GOOGLE_SERVICE_ACCOUNT_FILE": c.ServiceAccountFile,
	})
}

// RequireNotify checks the keys the notify binary needs.
func (c Config) RequireNotify() error {
	return require(map[string]string{
		"NOTION_TOKEN":              c.NotionToken,
		"NOTION_TASK_ID":            c.NotionTaskDB,
		"NOTION_PJ_ID":              c.NotionProjectDB,
		"NOTION_SPRINT_ID":          c.NotionSprintDB,
		"LINE_CHANNEL_ACCESS_TOKEN": c.LineToken,
		"LINE_MESSAGE_API_GROUP_ID": c.LineRecipient,
	})
}

// RequireReport checks the keys the report binary needs.
func (c Config) RequireReport() error {
	return require(map[string]string{
		"NOTION_TOKEN":                c.NotionToken,
		"NOTION_TASK_ID":              c.NotionTaskDB,
		"NOTION_REVIEW_DATABASE_ID":   c.NotionReviewDB,
		"GOOGLE_API_KEY":              c.GeminiAPIKey,
		"GOOGLE_SERVICE_ACCOUNT_FILE": c.ServiceAccountFile,
	})
}

func require(values map[string]string) error {
	var missing []string
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
