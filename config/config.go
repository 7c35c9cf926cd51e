package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/use-agent/jobscout/models"
	"github.com/zalando/go-keyring"
)

// Config holds all application configuration.
type Config struct {
	Site        SiteConfig
	Credentials Credentials
	Browser     BrowserConfig
	Timing      TimingConfig
	Sink        SinkConfig
	Status      StatusConfig
	Webhook     WebhookConfig
	Lock        LockConfig
	Log         LogConfig
}

// SiteConfig describes the employer console being crawled.
type SiteConfig struct {
	// HomeURL is the login page and the landing page holding the list tabs.
	HomeURL string // default: "https://employer.jobstreetexpress.com/id/home"

	// MaxLists bounds the list-tab loop.
	MaxLists int // default: 10

	// MaxPagesPerList bounds pagination inside one list. Zero means unbounded.
	MaxPagesPerList int // default: 0

	// TitleExclude rejects any job title containing one of these texts.
	TitleExclude []string
}

// Credentials are the console login. The password may come from the OS keyring.
type Credentials struct {
	Username string
	Password string

	// KeyringService is the keyring service consulted when Password is empty.
	KeyringService string // default: "jobscout"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Proxy is the proxy URL for all requests.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// AcceptLanguage is sent with every request.
	AcceptLanguage string // default: "id-ID,id;q=0.9,en;q=0.8"

	// NavigationInterval is the minimum spacing between two navigations.
	NavigationInterval time.Duration // default: 500ms
}

// TimingConfig holds the bounded waits and settle delays used while crawling.
type TimingConfig struct {
	ElementTimeout    time.Duration // default: 10s
	LoginTimeout      time.Duration // default: 15s
	URLChangeTimeout  time.Duration // default: 5s
	RevealSettle      time.Duration // default: 3s
	PreClickSettle    time.Duration // default: 500ms
	TabSettle         time.Duration // default: 3s
	PageFallback      time.Duration // default: 3s
	CandidateWait     time.Duration // default: 10s
	CandidateFallback time.Duration // default: 2s
	ReturnSettle      time.Duration // default: 4s
}

// SinkConfig selects and configures the tabular sink.
type SinkConfig struct {
	// Kind is "sheets" or "xlsx".
	Kind string // default: "sheets"

	SpreadsheetID   string
	CredentialsFile string
	XLSXPath        string // default: "jobstreet.xlsx"

	JobsSheet       string // default: "JobStreet"
	CandidatesSheet string // default: "JobStreet:Candidates"

	TimestampColumn string // default: "Scrape_Timestamp_IST"
	TimestampZone   string // default: "Asia/Kolkata"
}

// StatusConfig controls the optional status HTTP server.
type StatusConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string
	Mode string // "debug", "release", "test"; default: "release"
	// APIKeys protects /api/v1 endpoints other than health; empty means open.
	APIKeys []string
}

// WebhookConfig controls the run completion notification.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LockConfig controls the single-instance lock.
type LockConfig struct {
	Path string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Site: SiteConfig{
			HomeURL:         envOr("JOBSCOUT_HOME_URL", "https://employer.jobstreetexpress.com/id/home"),
			MaxLists:        envIntOr("JOBSCOUT_MAX_LISTS", 10),
			MaxPagesPerList: envIntOr("JOBSCOUT_MAX_PAGES_PER_LIST", 0),
			TitleExclude:    envSliceOr("JOBSCOUT_TITLE_EXCLUDE", nil),
		},
		Credentials: Credentials{
			Username:       os.Getenv("JOBSCOUT_USERNAME"),
			Password:       os.Getenv("JOBSCOUT_PASSWORD"),
			KeyringService: envOr("JOBSCOUT_KEYRING_SERVICE", "jobscout"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("JOBSCOUT_HEADLESS", true),
			Proxy:      os.Getenv("JOBSCOUT_PROXY"),
			NoSandbox:  envBoolOr("JOBSCOUT_NO_SANDBOX", false),
			BrowserBin: os.Getenv("JOBSCOUT_BROWSER_BIN"),
			BlockedResourceTypes: envSliceOr("JOBSCOUT_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			AcceptLanguage:     envOr("JOBSCOUT_ACCEPT_LANGUAGE", "id-ID,id;q=0.9,en;q=0.8"),
			NavigationInterval: envDurationOr("JOBSCOUT_NAV_INTERVAL", 500*time.Millisecond),
		},
		Timing: TimingConfig{
			ElementTimeout:    envDurationOr("JOBSCOUT_ELEMENT_TIMEOUT", 10*time.Second),
			LoginTimeout:      envDurationOr("JOBSCOUT_LOGIN_TIMEOUT", 15*time.Second),
			URLChangeTimeout:  envDurationOr("JOBSCOUT_URL_CHANGE_TIMEOUT", 5*time.Second),
			RevealSettle:      envDurationOr("JOBSCOUT_REVEAL_SETTLE", 3*time.Second),
			PreClickSettle:    envDurationOr("JOBSCOUT_PRECLICK_SETTLE", 500*time.Millisecond),
			TabSettle:         envDurationOr("JOBSCOUT_TAB_SETTLE", 3*time.Second),
			PageFallback:      envDurationOr("JOBSCOUT_PAGE_FALLBACK", 3*time.Second),
			CandidateWait:     envDurationOr("JOBSCOUT_CANDIDATE_WAIT", 10*time.Second),
			CandidateFallback: envDurationOr("JOBSCOUT_CANDIDATE_FALLBACK", 2*time.Second),
			ReturnSettle:      envDurationOr("JOBSCOUT_RETURN_SETTLE", 4*time.Second),
		},
		Sink: SinkConfig{
			Kind:            envOr("JOBSCOUT_SINK", "sheets"),
			SpreadsheetID:   os.Getenv("JOBSCOUT_SPREADSHEET_ID"),
			CredentialsFile: os.Getenv("JOBSCOUT_SHEETS_CREDENTIALS"),
			XLSXPath:        envOr("JOBSCOUT_XLSX_PATH", "jobstreet.xlsx"),
			JobsSheet:       envOr("JOBSCOUT_JOBS_SHEET", "JobStreet"),
			CandidatesSheet: envOr("JOBSCOUT_CANDIDATES_SHEET", "JobStreet:Candidates"),
			TimestampColumn: envOr("JOBSCOUT_TIMESTAMP_COLUMN", "Scrape_Timestamp_IST"),
			TimestampZone:   envOr("JOBSCOUT_TIMESTAMP_TZ", "Asia/Kolkata"),
		},
		Status: StatusConfig{
			Addr:    os.Getenv("JOBSCOUT_STATUS_ADDR"),
			Mode:    envOr("JOBSCOUT_STATUS_MODE", "release"),
			APIKeys: envSliceOr("JOBSCOUT_STATUS_API_KEYS", nil),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("JOBSCOUT_WEBHOOK_URL"),
			Secret: os.Getenv("JOBSCOUT_WEBHOOK_SECRET"),
		},
		Lock: LockConfig{
			Path: envOr("JOBSCOUT_LOCK_FILE", filepath.Join(os.TempDir(), "jobscout.lock")),
		},
		Log: LogConfig{
			Level:  envOr("JOBSCOUT_LOG_LEVEL", "info"),
			Format: envOr("JOBSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// keyringGet is swapped in tests.
var keyringGet = keyring.Get

// ResolvePassword fills an empty password from the OS keyring.
func (c *Credentials) ResolvePassword() error {
	if c.Password != "" {
		return nil
	}
	if c.Username == "" {
		return models.NewCrawlError(models.ErrCodeConfigInvalid, "JOBSCOUT_USERNAME is not set", nil)
	}
	secret, err := keyringGet(c.KeyringService, c.Username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return models.NewCrawlError(models.ErrCodeConfigInvalid,
				"JOBSCOUT_PASSWORD is not set and no keyring entry exists", err)
		}
		return models.NewCrawlError(models.ErrCodeConfigInvalid, "keyring lookup failed", err)
	}
	c.Password = secret
	return nil
}

// Validate checks the settings a crawl cannot start without.
func (c *Config) Validate() error {
	if c.Credentials.Username == "" {
		return models.NewCrawlError(models.ErrCodeConfigInvalid, "JOBSCOUT_USERNAME is not set", nil)
	}
	if c.Site.MaxLists <= 0 {
		return models.NewCrawlError(models.ErrCodeConfigInvalid,
			fmt.Sprintf("JOBSCOUT_MAX_LISTS must be positive, got %d", c.Site.MaxLists), nil)
	}
	switch c.Sink.Kind {
	case "sheets":
		if c.Sink.SpreadsheetID == "" || c.Sink.CredentialsFile == "" {
			return models.NewCrawlError(models.ErrCodeConfigInvalid,
				"sheets sink needs JOBSCOUT_SPREADSHEET_ID and JOBSCOUT_SHEETS_CREDENTIALS", nil)
		}
	case "xlsx":
		if c.Sink.XLSXPath == "" {
			return models.NewCrawlError(models.ErrCodeConfigInvalid, "xlsx sink needs JOBSCOUT_XLSX_PATH", nil)
		}
	default:
		return models.NewCrawlError(models.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown sink %q", c.Sink.Kind), nil)
	}
	if _, err := time.LoadLocation(c.Sink.TimestampZone); err != nil {
		return models.NewCrawlError(models.ErrCodeConfigInvalid, "invalid JOBSCOUT_TIMESTAMP_TZ", err)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
