package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerIgnoresStaleActiveMarker(t *testing.T) {
	markup := `<button class="btn join-item btn-primary">1</button><button class="btn join-item">2</button><button class="btn join-item">3</button>`

	t.Run("marker behind current", func(t *testing.T) {
		_, els := pagerButtons(t, markup)
		p := pager{buttons: els, current: 2}
		el, ok := p.afterActive("btn-primary")
		assert.False(t, ok)
		assert.Nil(t, el)

		el, ok = p.byCounter()
		require.True(t, ok)
		assert.Equal(t, "3", buttonText(t, el))
	})

	t.Run("counter never targets an earlier page", func(t *testing.T) {
		_, els := pagerButtons(t, markup)
		_, ok := pager{buttons: els, current: 3}.byCounter()
		assert.False(t, ok)
		_, ok = pager{buttons: els, current: 3}.forward(2)
		assert.False(t, ok)
	})
}

func TestListWalksPastStaleActiveMarker(t *testing.T) {
	opts, _, _ := testOptions(t)
	site := consoleSite(2).
		Authed(listURL(1), doc(cards(jobCard{status: "Tayang", title: "Barista", company: "Kopi Kita"}))).
		Authed(listPageURL(2, 1), doc(
			cards(jobCard{status: "Tayang", title: "Kasir", company: "Kopi Kita"}),
			jobPager(2, 1, 3),
		)).
		// Page 2 arrives with the marker still on page 1.
		Authed(listPageURL(2, 2), doc(
			cards(jobCard{status: "Tayang", title: "Koki", company: "Kopi Kita"}),
			jobPager(2, 1, 3),
		)).
		Authed(listPageURL(2, 3), doc(
			cards(jobCard{status: "Tayang", title: "Manajer", company: "Kopi Kita"}),
			jobPager(2, 3, 3),
		))
	page := site.Open()
	st := NewState()

	require.NoError(t, New(page, opts).Run(context.Background(), creds, st))

	require.Len(t, st.Jobs, 4)
	titles := make([]string, len(st.Jobs))
	for i, j := range st.Jobs {
		titles[i] = j.Title
	}
	assert.Equal(t, []string{"Barista", "Kasir", "Koki", "Manajer"}, titles)
	assert.Equal(t, 3, st.Jobs[3].PageNumber)
	assert.Equal(t, 1, page.VisitCount(listPageURL(2, 2)))
	assert.Equal(t, 1, page.VisitCount(listPageURL(2, 3)))
}
