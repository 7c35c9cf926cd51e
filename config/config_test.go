package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/jobscout/models"
	"github.com/zalando/go-keyring"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://employer.jobstreetexpress.com/id/home", cfg.Site.HomeURL)
	assert.Equal(t, 10, cfg.Site.MaxLists)
	assert.Equal(t, 0, cfg.Site.MaxPagesPerList)
	assert.Equal(t, []string{"Image", "Font", "Media"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, 15*time.Second, cfg.Timing.LoginTimeout)
	assert.Equal(t, 3*time.Second, cfg.Timing.RevealSettle)
	assert.Equal(t, "sheets", cfg.Sink.Kind)
	assert.Equal(t, "JobStreet:Candidates", cfg.Sink.CandidatesSheet)
	assert.Equal(t, "Scrape_Timestamp_IST", cfg.Sink.TimestampColumn)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JOBSCOUT_MAX_LISTS", "4")
	t.Setenv("JOBSCOUT_HEADLESS", "false")
	t.Setenv("JOBSCOUT_REVEAL_SETTLE", "750ms")
	t.Setenv("JOBSCOUT_TITLE_EXCLUDE", " RedDoorz , ,Jakasampurna")
	t.Setenv("JOBSCOUT_SINK", "xlsx")

	cfg := Load()

	assert.Equal(t, 4, cfg.Site.MaxLists)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 750*time.Millisecond, cfg.Timing.RevealSettle)
	assert.Equal(t, []string{"RedDoorz", "Jakasampurna"}, cfg.Site.TitleExclude)
	assert.Equal(t, "xlsx", cfg.Sink.Kind)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JOBSCOUT_MAX_LISTS", "many")
	t.Setenv("JOBSCOUT_ELEMENT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.Site.MaxLists)
	assert.Equal(t, 10*time.Second, cfg.Timing.ElementTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Load()
		c.Credentials.Username = "hr@example.com"
		c.Sink.SpreadsheetID = "sheet-id"
		c.Sink.CredentialsFile = "creds.json"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no username", func(c *Config) { c.Credentials.Username = "" }, false},
		{"zero lists", func(c *Config) { c.Site.MaxLists = 0 }, false},
		{"sheets without id", func(c *Config) { c.Sink.SpreadsheetID = "" }, false},
		{"xlsx", func(c *Config) { c.Sink.Kind = "xlsx"; c.Sink.SpreadsheetID = "" }, true},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "csv" }, false},
		{"bad zone", func(c *Config) { c.Sink.TimestampZone = "Mars/Olympus" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ce *models.CrawlError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, models.ErrCodeConfigInvalid, ce.Code)
		})
	}
}

func TestResolvePassword(t *testing.T) {
	orig := keyringGet
	t.Cleanup(func() { keyringGet = orig })

	t.Run("env wins", func(t *testing.T) {
		keyringGet = func(string, string) (string, error) {
			t.Fatal("keyring should not be consulted")
			return "", nil
		}
		c := Credentials{Username: "hr", Password: "env-secret", KeyringService: "jobscout"}
		require.NoError(t, c.ResolvePassword())
		assert.Equal(t, "env-secret", c.Password)
	})

	t.Run("keyring fallback", func(t *testing.T) {
		keyringGet = func(service, user string) (string, error) {
			assert.Equal(t, "jobscout", service)
			assert.Equal(t, "hr", user)
			return "ring-secret", nil
		}
		c := Credentials{Username: "hr", KeyringService: "jobscout"}
		require.NoError(t, c.ResolvePassword())
		assert.Equal(t, "ring-secret", c.Password)
	})

	t.Run("missing entry", func(t *testing.T) {
		keyringGet = func(string, string) (string, error) { return "", keyring.ErrNotFound }
		c := Credentials{Username: "hr", KeyringService: "jobscout"}
		err := c.ResolvePassword()
		require.Error(t, err)
		assert.True(t, errors.Is(err, keyring.ErrNotFound))
	})
}
