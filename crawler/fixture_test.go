package crawler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/use-agent/jobscout/browser/browsertest"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/monitoring"
)

const (
	origin    = "https://console.test"
	homeURL   = origin + "/id/home"
	dashboard = origin + "/id/dashboard"
)

func listURL(k int) string { return fmt.Sprintf("%s/id/jobs?list=%d", origin, k) }

func listPageURL(k, page int) string {
	if page == 1 {
		return listURL(k)
	}
	return fmt.Sprintf("%s&page=%d", listURL(k), page)
}

func detailURL(id int) string { return fmt.Sprintf("%s/id/jobs/%d", origin, id) }

func doc(body ...string) string {
	return "<html><body>" + strings.Join(body, "\n") + "</body></html>"
}

const loginForm = `
<input data-testid="login-form-email" name="email">
<input data-testid="login-form-password" type="password">
<div role="button" data-login data-href="/id/dashboard">Masuk</div>`

const deadLoginForm = `
<input data-testid="login-form-email" name="email">
<input type="password" name="pw">
<div role="button">Masuk</div>`

func tabs(n int) string {
	var b strings.Builder
	for k := 1; k <= n; k++ {
		fmt.Fprintf(&b, `<button role="tab" data-href="/id/jobs?list=%d">List %d</button>`, k, k)
	}
	return b.String() + `<section class="hero">Selamat datang</section>`
}

type jobCard struct {
	status  string
	title   string
	company string
	id      int // 0 renders no detail link
}

func (j jobCard) String() string {
	link := `<span class="text-base font-normal">` + j.title + `</span>`
	if j.id != 0 {
		link = fmt.Sprintf(`<a href="/id/jobs/%d">%s</a>`, j.id, link)
	}
	return fmt.Sprintf(`
<section class="border-l-8">
  <div class="badge badge-primary">%s</div>
  <span class="font-extralight">Dibuat 01/03/2025</span>
  %s
  <span class="flex gap-2 text-base font-normal">%s</span>
  <span class="text-md text-sm font-light">Jakarta Selatan</span>
  <span>3 Kandidat</span>
</section>`, j.status, link, j.company)
}

func cards(js ...jobCard) string {
	parts := make([]string, len(js))
	for i, j := range js {
		parts[i] = j.String()
	}
	return strings.Join(parts, "\n")
}

// jobPager renders numbered job pagination with current marked btn-primary.
func jobPager(list, current, last int) string {
	var b strings.Builder
	b.WriteString(`<div class="join">`)
	for n := 1; n <= last; n++ {
		class := "btn join-item"
		if n == current {
			class += " btn-primary"
		}
		fmt.Fprintf(&b, `<button class="%s" data-href="%s">%d</button>`, class, listPageURL(list, n), n)
	}
	b.WriteString(`</div>`)
	return b.String()
}

type candCard struct {
	name  string
	email string
	phone string
}

func (c candCard) String() string {
	return fmt.Sprintf(`
<div class="grid gap-6">
  <h2 class="font-light">%s</h2>
  <div class="flex divide-x border"><span class="text-base-500">02/03/2025</span></div>
  <div role="status">Menunggu</div>
  <span class="badge badge-primary badge-outline">SMA</span>
  <span class="badge badge-primary badge-outline">Barista</span>
  <button class="link-info btn-text" data-reveal='<a href="mailto:%s">%s</a>'>Lihat email</button>
  <button class="link-info btn-text" data-reveal='<button class="text-info text-base cursor-pointer">%s</button>'>Lihat telepon</button>
  <div class="text-base">Kota Bandung, West Java</div>
</div>`, c.name, c.email, c.email, c.phone)
}

func candidatePage(id, current, last int, cs ...candCard) string {
	parts := make([]string, 0, len(cs)+1)
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	if last > 1 {
		var b strings.Builder
		for n := 1; n <= last; n++ {
			fmt.Fprintf(&b, `<button class="btn join-item" data-href="/id/jobs/%d?page=%d">%d</button>`, id, n, n)
		}
		parts = append(parts, b.String())
	}
	return doc(parts...)
}

// consoleSite serves the login form at home and the tabbed home after login.
func consoleSite(lists int) *browsertest.Site {
	return browsertest.NewSite().
		Route(homeURL, doc(loginForm)).
		Authed(homeURL, doc(tabs(lists))).
		Authed(dashboard, doc(`<p>Dasbor</p>`))
}

func testOptions(t *testing.T) (Options, *monitoring.Metrics, *browsertest.NopWaiter) {
	t.Helper()
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	w := &browsertest.NopWaiter{}
	return Options{
		Site: config.SiteConfig{
			HomeURL:  homeURL,
			MaxLists: 10,
		},
		Waiter:  w,
		Metrics: m,
	}, m, w
}

var creds = config.Credentials{Username: "hr@kopikita.id", Password: "rahasia"}
