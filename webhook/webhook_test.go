package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/jobscout/models"
)

func TestDeliverSigned(t *testing.T) {
	var (
		gotSig  string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ev := NewEvent("run-1", RunData{Jobs: 3, Candidates: 7}, nil, time.Unix(100, 0))
	require.NoError(t, Deliver(context.Background(), srv.URL, "s3cret", ev))

	assert.Equal(t, "sha256="+Sign("s3cret", gotBody), gotSig)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventCompleted, decoded.Type)
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, int64(100), decoded.Timestamp)
	assert.Equal(t, 7, decoded.Data.Candidates)
	assert.Nil(t, decoded.Error)
}

func TestDeliverUnsigned(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header[SignatureHeader]
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.URL, "", NewEvent("r", RunData{}, nil, time.Now())))
	assert.False(t, present)
}

func TestDeliverErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", NewEvent("r", RunData{}, nil, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewEventFailed(t *testing.T) {
	crawlErr := models.NewCrawlError(models.ErrCodeLogin, "still on login page", nil)
	ev := NewEvent("r", RunData{}, fmt.Errorf("run: %w", crawlErr), time.Now())
	assert.Equal(t, EventFailed, ev.Type)
	require.NotNil(t, ev.Error)
	assert.Equal(t, models.ErrCodeLogin, ev.Error.Code)

	ev = NewEvent("r", RunData{}, errors.New("boom"), time.Now())
	assert.Equal(t, models.ErrCodeInternal, ev.Error.Code)
	assert.Equal(t, "boom", ev.Error.Message)
}
