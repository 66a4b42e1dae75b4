package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/workreports/internal/adapters/ledger"
	"github.com/csg33k/workreports/internal/adapters/pdf"
	sqliteadapter "github.com/csg33k/workreports/internal/adapters/sqlite"
	"github.com/csg33k/workreports/internal/domain"
	"github.com/csg33k/workreports/internal/form"
	"github.com/csg33k/workreports/internal/handlers"
	"github.com/csg33k/workreports/internal/ports"
	"github.com/csg33k/workreports/internal/session"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type countingOpener struct {
	calls [][2]string
	err   error
}

func (o *countingOpener) Open(_ context.Context, addr, wt string) (ports.Reports, error) {
	o.calls = append(o.calls, [2]string{addr, wt})
	if o.err != nil {
		return nil, o.err
	}
	return staticReports{n: len(o.calls), addr: addr}, nil
}

type staticReports struct {
	n    int
	addr string
}

func (s staticReports) Employees(context.Context) (string, error)  { return s.addr, nil }
func (s staticReports) DayReports(context.Context) (string, error) { return string(rune('0' + s.n)), nil }
func (s staticReports) GoodPoints(context.Context) (string, error) { return "g", nil }
func (s staticReports) BadPoints(context.Context) (string, error)  { return "b", nil }

type client struct {
	t      *testing.T
	srv    http.Handler
	store  *session.Store
	cookie *http.Cookie
}

func newClient(t *testing.T, opener ports.ReportsOpener) *client {
	store := session.New(func() *form.State { return form.New(opener, domain.Inputs{}) })
	return &client{t: t, srv: handlers.New(store, pdf.Exporter{}).Routes(), store: store}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	resp := rec.Result()
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			c.cookie = ck
		}
	}
	return resp
}

func (c *client) get(path string) (*http.Response, string) {
	resp := c.do(httptest.NewRequest(http.MethodGet, path, nil))
	return resp, body(c.t, resp)
}

func (c *client) create(addr, wt string, htmx bool) (*http.Response, string) {
	vals := url.Values{"employee_address": {addr}, "working_time": {wt}}
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp := c.do(req)
	return resp, body(c.t, resp)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestIndexDefaultState(t *testing.T) {
	c := newClient(t, &countingOpener{})
	resp, out := c.get("/")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, out, `value="0xd4f52aa7c26b0169f942939d7ee6d72e2e16a4a1"`)
	assert.Contains(t, out, `value="1498545234"`)
	for _, id := range []string{"employees", "day_reports", "good_points", "bad_points"} {
		assert.Contains(t, out, `id="`+id+`"></div>`)
	}
	assert.Nil(t, c.cookie, "viewing the page does not start a session")
	assert.Equal(t, 0, c.store.Len())
}

func TestOnlyCreateAllocatesSession(t *testing.T) {
	c := newClient(t, &countingOpener{})
	for i := 0; i < 5; i++ {
		c.get("/")
		c.get("/reports")
	}
	assert.Equal(t, 0, c.store.Len())

	c.create("0xaaa", "1", true)
	require.NotNil(t, c.cookie)
	assert.Equal(t, 1, c.store.Len())

	_, out := c.get("/")
	assert.Contains(t, out, `id="employees">0xaaa</div>`)
	assert.Equal(t, 1, c.store.Len())
}

func TestCreateWithDefaults(t *testing.T) {
	op := &countingOpener{}
	c := newClient(t, op)
	c.get("/")

	resp, out := c.create(domain.DefaultEmployeeAddress, domain.DefaultWorkingTime, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, op.calls, 1)
	assert.Equal(t, [2]string{domain.DefaultEmployeeAddress, "1498545234"}, op.calls[0])
	assert.NotContains(t, out, "<!doctype html>", "htmx gets the fragment")
	assert.Contains(t, out, `id="employees">`+domain.DefaultEmployeeAddress+`</div>`)
	assert.Contains(t, out, `id="day_reports">1</div>`)
	assert.Contains(t, out, `id="good_points">g</div>`)
	assert.Contains(t, out, `id="bad_points">b</div>`)
}

func TestPlainPostRendersFullPage(t *testing.T) {
	c := newClient(t, &countingOpener{})
	_, out := c.create("0xaaa", "1", false)
	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, `id="employees">0xaaa</div>`)
}

func TestRepeatedCreateShowsLatestHandle(t *testing.T) {
	op := &countingOpener{}
	c := newClient(t, op)

	c.create("0xaaa", "1", true)
	_, out := c.create("0xbbb", "2", true)

	require.Len(t, op.calls, 2)
	assert.Contains(t, out, `id="employees">0xbbb</div>`)
	assert.Contains(t, out, `id="day_reports">2</div>`)
	assert.Contains(t, out, `value="0xbbb"`)
}

func TestReadingDoesNotCreate(t *testing.T) {
	op := &countingOpener{}
	c := newClient(t, op)
	c.create("0xaaa", "1", true)

	for i := 0; i < 3; i++ {
		resp, out := c.get("/reports")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, out, `id="employees">0xaaa</div>`)
	}
	assert.Len(t, op.calls, 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	op := &countingOpener{}
	a := newClient(t, op)
	b := &client{t: t, srv: a.srv}

	a.create("0xaaa", "1", true)
	_, out := b.get("/")
	assert.Contains(t, out, `id="employees"></div>`)
}

func TestCreateFailureIs500(t *testing.T) {
	c := newClient(t, &countingOpener{err: errors.New("contract unreachable")})
	resp, out := c.create("0xaaa", "1", true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, out, "contract unreachable")
}

func TestExportPDF(t *testing.T) {
	c := newClient(t, &countingOpener{})

	resp, _ := c.get("/reports/pdf")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	c.create("0xaaa", "1", true)
	resp, out := c.get("/reports/pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}

func TestHealthz(t *testing.T) {
	c := newClient(t, &countingOpener{})
	resp, out := c.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out)
}

func TestEndToEndWithLedger(t *testing.T) {
	repo, err := sqliteadapter.New(context.Background(), filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	c := newClient(t, ledger.New(repo, ledger.DefaultPolicy()))

	_, out := c.create(domain.DefaultEmployeeAddress, domain.DefaultWorkingTime, true)
	assert.Contains(t, out, `id="employees">`+domain.DefaultEmployeeAddress+`</div>`)
	assert.Contains(t, out, `id="day_reports">1</div>`)
	assert.Contains(t, out, `id="good_points">1</div>`)
	assert.Contains(t, out, `id="bad_points">0</div>`)

	// 10:00 UTC the next day is late.
	_, out = c.create(domain.DefaultEmployeeAddress, "1498644000", true)
	assert.Contains(t, out, `id="day_reports">2</div>`)
	assert.Contains(t, out, `id="bad_points">1</div>`)

	resp, out := c.create(domain.DefaultEmployeeAddress, "not-a-time", true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, out, "working time")
}

func TestExportPDFWithNonLatinEmployeeInLedger(t *testing.T) {
	repo, err := sqliteadapter.New(context.Background(), filepath.Join(t.TempDir(), "pdf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	a := newClient(t, ledger.New(repo, ledger.DefaultPolicy()))
	b := &client{t: t, srv: a.srv}

	resp, _ := a.create("0x日本", "1498545234", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, out := b.create("0xaaa", "1498545234", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, out, "0x日本, 0xaaa")

	resp, out = b.get("/reports/pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}
