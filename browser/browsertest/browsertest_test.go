package browsertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/jobscout/browser"
)

const base = "https://site.test"

func TestNavigateAndAuthedRoutes(t *testing.T) {
	ctx := context.Background()
	site := NewSite().
		Route(base+"/", `<html><body><button data-login data-href="/in">Masuk</button></body></html>`).
		Route(base+"/in", `<html><body><p>public</p></body></html>`).
		Authed(base+"/in", `<html><body><p>private</p></body></html>`)
	page := site.Open()

	require.NoError(t, page.Navigate(ctx, base+"/"))
	els, err := page.Elements("button")
	require.NoError(t, err)
	require.Len(t, els, 1)
	require.NoError(t, els[0].Activate())

	assert.True(t, page.LoggedIn())
	u, _ := page.URL(ctx)
	assert.Equal(t, base+"/in", u)

	p, _ := page.Elements("p")
	require.Len(t, p, 1)
	text, _ := p[0].Text()
	assert.Equal(t, "private", text)
	assert.Equal(t, []string{base + "/", base + "/in"}, page.Visits)
	assert.Equal(t, []string{"Masuk"}, page.Activations)
}

func TestUnknownRoute(t *testing.T) {
	page := NewSite().Open()
	assert.Error(t, page.Navigate(context.Background(), base+"/nope"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, page.Navigate(ctx, base+"/nope"), context.Canceled)
}

func TestRevealAndStaleness(t *testing.T) {
	ctx := context.Background()
	page := NewSite().
		Route(base+"/", `<html><body><div id="card"><button data-reveal='<a href="mailto:x@y.id">x@y.id</a>'>Lihat <b>email</b></button></div></body></html>`).
		Open()
	require.NoError(t, page.Navigate(ctx, base+"/"))

	btns, _ := page.Elements("button")
	require.Len(t, btns, 1)
	own, _ := btns[0].OwnText()
	assert.Equal(t, "Lihat ", own)

	require.NoError(t, btns[0].Activate())
	links, _ := page.Elements(`#card a[href^="mailto:"]`)
	require.Len(t, links, 1)
	href, ok, err := links[0].Attribute("href")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "mailto:x@y.id", href)

	// A second activation does not reveal again.
	require.NoError(t, btns[0].Activate())
	links, _ = page.Elements("a")
	assert.Len(t, links, 1)

	card, ok := btns[0].Closest("#card")
	require.True(t, ok)
	assert.False(t, page.WaitStale(ctx, card, time.Second))

	require.NoError(t, page.Navigate(ctx, base+"/"))
	assert.True(t, page.WaitStale(ctx, card, time.Second))
	_, err = card.Text()
	assert.Error(t, err)
	assert.Equal(t, 2, page.VisitCount(base+"/"))
}

func TestWaitFor(t *testing.T) {
	ctx := context.Background()
	page := NewSite().Route(base+"/", `<html><body><section></section></body></html>`).Open()
	require.NoError(t, page.Navigate(ctx, base+"/"))

	assert.NoError(t, page.WaitFor(ctx, "section", time.Second))
	assert.True(t, errors.Is(page.WaitFor(ctx, "table", time.Second), browser.ErrTimeout))
	assert.False(t, page.WaitURLChange(ctx, base+"/", time.Second))
	assert.True(t, page.WaitURLChange(ctx, base+"/other", time.Second))
}

func TestInputKeys(t *testing.T) {
	page := NewSite().Route(base+"/", `<html><body>
<input data-testid="email-field" name="email">
<input name="pw">
<input type="search">
</body></html>`).Open()
	require.NoError(t, page.Navigate(context.Background(), base+"/"))

	inputs, _ := page.Elements("input")
	require.Len(t, inputs, 3)
	for i, v := range []string{"a", "b", "c"} {
		require.NoError(t, inputs[i].Input(v))
	}
	assert.Equal(t, map[string]string{"email-field": "a", "pw": "b", "search": "c"}, page.Inputs)

	v, ok, _ := inputs[1].Attribute("value")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestNopWaiter(t *testing.T) {
	w := &NopWaiter{}
	require.NoError(t, w.Wait(context.Background(), time.Second))
	require.NoError(t, w.Wait(context.Background(), 2*time.Second))
	assert.Equal(t, 2, w.Calls)
	assert.Equal(t, 3*time.Second, w.Total)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, w.Wait(ctx, time.Second))
}

func TestActivatePanics(t *testing.T) {
	page := NewSite().Route(base+"/", `<html><body><button data-panic="driver gone">x</button></body></html>`).Open()
	require.NoError(t, page.Navigate(context.Background(), base+"/"))

	btns, _ := page.Elements("button")
	require.Len(t, btns, 1)
	assert.PanicsWithValue(t, "driver gone", func() { _ = btns[0].Activate() })

	// The page lock is released by the panic.
	_, err := page.Elements("button")
	assert.NoError(t, err)
}
