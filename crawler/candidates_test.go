package crawler

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/jobscout/browser/browsertest"
	"github.com/use-agent/jobscout/models"
)

func TestCandidateSectionFailureKeepsPartialRecord(t *testing.T) {
	opts, m, _ := testOptions(t)
	broken := candCard{name: "Andi", email: "andi@mail.id", phone: "0812"}.String()
	broken = strings.Replace(broken,
		`<button class="link-info btn-text" data-reveal='<button class="text-info text-base cursor-pointer">0812</button>'>`,
		`<button class="link-info btn-text" data-panic="target closed">`, 1)
	require.Contains(t, broken, "data-panic")

	page := browsertest.NewSite().Route(detailURL(101), doc(
		broken,
		candCard{name: "Budi", email: "budi@mail.id", phone: "0813"}.String(),
	)).Open()
	require.NoError(t, page.Navigate(context.Background(), detailURL(101)))

	recs := New(page, opts).scrapeCandidatePage(context.Background(), "Barista", 1, slog.Default())

	require.Len(t, recs, 2)
	andi := recs[0]
	assert.Equal(t, "Andi", andi.Name)
	assert.Equal(t, "andi@mail.id", andi.Email)
	assert.Equal(t, models.CandidatePending, andi.Status)
	assert.Equal(t, models.Sentinel, andi.Phone)
	assert.Equal(t, models.Sentinel, andi.Location, "fields after the failure stay unset")

	budi := recs[1]
	assert.Equal(t, "Budi", budi.Name)
	assert.Equal(t, "budi@mail.id", budi.Email)
	assert.Equal(t, "0813", budi.Phone)
	assert.Equal(t, "Kota Bandung, West Java", budi.Location)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SectionErrors.WithLabelValues("candidate")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CountMismatch))
}
