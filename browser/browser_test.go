package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/jobscout/models"
)

func TestIsTracker(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"www.google-analytics.com", true},
		{"GOOGLETAGMANAGER.COM", true},
		{"stats.g.doubleclick.net", true},
		{"employer.jobstreetexpress.com", false},
		{"notdoubleclick.net", false},
	}
	for _, tt := range tests {
		if got := isTracker(tt.host); got != tt.want {
			t.Errorf("isTracker(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep.Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, Sleep.Wait(context.Background(), 0))
}

func TestCategorizeError(t *testing.T) {
	assert.Equal(t, models.ErrCodeTimeout, categorizeError(context.DeadlineExceeded, "x").Code)
	assert.Equal(t, models.ErrCodeCanceled, categorizeError(context.Canceled, "x").Code)
	assert.Equal(t, models.ErrCodeNavigation, categorizeError(errors.New("net::ERR_FAILED"), "x").Code)
}
