package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "hotel_front/internal/adapters/http_server"
	redisad "hotel_front/internal/adapters/redis"
	"hotel_front/internal/adapters/reviewsapi"
	"hotel_front/internal/app"
	"hotel_front/internal/session"
	"hotel_front/internal/shared"
	"hotel_front/internal/storage/memory"
)

// upstream is an in-memory reviews service.
type upstream struct {
	mu       sync.Mutex
	reviews  map[int64][]map[string]any
	failPost bool
	nextID   int
}

func (u *upstream) set(fn func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn()
}

func (u *upstream) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/hotels/{id}/reviews", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		u.mu.Lock()
		list, ok := u.reviews[id]
		u.mu.Unlock()
		if !ok {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	r.Post("/api/hotels/{id}/reviews", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.failPost {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		u.nextID++
		in["id"] = u.nextID
		in["createdAt"] = "2025-01-02T10:00:00"
		u.reviews[id] = append([]map[string]any{in}, u.reviews[id]...)
		_ = json.NewEncoder(w).Encode(in)
	})
	return r
}

type env struct {
	t        *testing.T
	ts       *httptest.Server
	up       *upstream
	views    *app.Views
	sessions *session.Store
	mr       *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	t.Helper()
	up := &upstream{reviews: map[int64][]map[string]any{
		1: {
			{"id": 11, "userName": "Asha", "rating": 4, "text": "good"},
			{"id": 12, "userName": "Ravi", "rating": 5, "text": "great"},
		},
	}}
	uts := httptest.NewServer(up.handler())
	t.Cleanup(uts.Close)

	client, err := reviewsapi.New(uts.URL, 1000, 2*time.Second)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	sessions := session.NewStore(cache, time.Hour)
	views := app.NewViews(client, 2*time.Second, 2)
	t.Cleanup(views.WatchSessions(sessions))

	catalog := app.NewCatalogService(memory.NewCatalog(shared.DefaultHotels...), cache, time.Minute)

	srv := httpserver.New([]string{"http://localhost:3000"})
	srv.MountHandlers(&httpserver.Handlers{
		Catalog:  catalog,
		Views:    views,
		Sessions: sessions,
		Validate: httpserver.NewValidator(),
		PageSize: 10,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &env{t: t, ts: ts, up: up, views: views, sessions: sessions, mr: mr}
}

func (e *env) do(method, path, sid string, body any, hdr ...string) *http.Response {
	e.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	require.NoError(e.t, err)
	if sid != "" {
		req.Header.Set(httpserver.SessionHeader, sid)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

type card struct {
	ID       int64  `json:"id"`
	Location string `json:"location"`
	Price    int64  `json:"price"`
	Summary  struct {
		Count        int     `json:"count"`
		Average      float64 `json:"average"`
		AverageLabel string  `json:"averageLabel"`
		Stars        int     `json:"stars"`
		Pending      int     `json:"pending"`
	} `json:"summary"`
	Composer struct {
		State string `json:"state"`
	} `json:"composer"`
}

type submitted struct {
	Entry struct {
		Status string `json:"status"`
		Review struct {
			ID      *string `json:"id"`
			LocalID string  `json:"localId"`
			Author  string  `json:"userName"`
			Rating  int     `json:"rating"`
		} `json:"review"`
	} `json:"entry"`
	Summary struct {
		Count   int     `json:"count"`
		Average float64 `json:"average"`
	} `json:"summary"`
}

func (e *env) session(name string) string {
	e.t.Helper()
	res := e.do(http.MethodPost, "/v1/session", "", map[string]string{"name": name})
	require.Equal(e.t, http.StatusCreated, res.StatusCode)
	sid := res.Header.Get(httpserver.SessionHeader)
	require.NotEmpty(e.t, sid)
	return sid
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	res := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestListHotels_ServerAndSeedAggregates(t *testing.T) {
	e := newEnv(t)
	sid := e.session("Priya")

	res := e.do(http.MethodGet, "/v1/hotels", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cards := decode[[]card](t, res)
	require.Len(t, cards, 6)

	// hotel 1 comes from the service, the rest fall back to seed values
	assert.Equal(t, 2, cards[0].Summary.Count)
	assert.InDelta(t, 4.5, cards[0].Summary.Average, 1e-9)
	assert.Equal(t, "4.5", cards[0].Summary.AverageLabel)
	assert.Equal(t, 256, cards[1].Summary.Count)
	assert.InDelta(t, 4.6, cards[1].Summary.Average, 1e-9)
	assert.Equal(t, "closed", cards[1].Composer.State)
	assert.Equal(t, 1, e.views.Len())
}

func TestListHotels_Filters(t *testing.T) {
	e := newEnv(t)
	sid := e.session("")

	res := e.do(http.MethodGet, "/v1/hotels?maxPrice=15000&minRating=4.5&location=Pune", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cards := decode[[]card](t, res)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(2), cards[0].ID)
	assert.Equal(t, "Pune", cards[0].Location)

	res = e.do(http.MethodGet, "/v1/hotels?minRating=9", sid, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))

	res = e.do(http.MethodGet, "/v1/hotels?maxPrice=abc", sid, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestListHotels_RequiresSession(t *testing.T) {
	e := newEnv(t)
	res := e.do(http.MethodGet, "/v1/hotels", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestViewRoutes_RejectUnknownSession(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 5; i++ {
		sid := fmt.Sprintf("never-written-%d", i)
		for _, rt := range []struct{ method, path string }{
			{http.MethodGet, "/v1/hotels"},
			{http.MethodGet, "/v1/hotels/1/reviews"},
			{http.MethodPost, "/v1/hotels/1/composer"},
			{http.MethodPost, "/v1/hotels/1/reviews"},
		} {
			res := e.do(rt.method, rt.path, sid, nil)
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode, rt.method+" "+rt.path)
			assert.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))
		}
	}
	assert.Zero(t, e.views.Len())
}

func TestSweep_ReleasesViewOfExpiredSession(t *testing.T) {
	e := newEnv(t)
	sid := e.session("Priya")
	keep := e.session("Meera")
	e.do(http.MethodGet, "/v1/hotels", sid, nil)
	e.do(http.MethodGet, "/v1/hotels", keep, nil)
	require.Equal(t, 2, e.views.Len())

	// the cache expires the first session without a Cleared event
	e.mr.SetTTL("test:session:"+sid, time.Second)
	e.mr.FastForward(2 * time.Second)
	assert.Equal(t, 2, e.views.Len())

	assert.Equal(t, 1, e.views.Sweep(context.Background(), e.sessions, time.Hour))
	assert.Equal(t, 1, e.views.Len())

	res := e.do(http.MethodGet, "/v1/hotels", sid, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 1, e.views.Len())
}

func TestListHotels_ETag(t *testing.T) {
	e := newEnv(t)
	sid := e.session("x")
	res := e.do(http.MethodGet, "/v1/hotels", sid, nil)
	etag := res.Header.Get("ETag")
	require.NotEmpty(t, etag)

	res = e.do(http.MethodGet, "/v1/hotels", sid, nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, res.StatusCode)
}

func TestComposerFlow_Confirmed(t *testing.T) {
	e := newEnv(t)
	sid := e.session("Priya")
	e.do(http.MethodGet, "/v1/hotels", sid, nil)

	res := e.do(http.MethodPost, "/v1/hotels/1/composer", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "open", decode[map[string]any](t, res)["state"])

	res = e.do(http.MethodPut, "/v1/hotels/1/composer", sid, map[string]any{"rating": 3, "text": "fine"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = e.do(http.MethodPost, "/v1/hotels/1/reviews", sid, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	out := decode[submitted](t, res)
	assert.Equal(t, "confirmed", out.Entry.Status)
	require.NotNil(t, out.Entry.Review.ID)
	assert.Equal(t, "Priya", out.Entry.Review.Author)
	assert.Equal(t, 3, out.Entry.Review.Rating)
	assert.Equal(t, 3, out.Summary.Count)
	assert.InDelta(t, 4.0, out.Summary.Average, 1e-9)

	// composer is closed again, so submitting the draft is a conflict
	res = e.do(http.MethodPost, "/v1/hotels/1/reviews", sid, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestSubmit_FailureKeepsPendingEntry(t *testing.T) {
	e := newEnv(t)
	e.up.set(func() { e.up.failPost = true })
	sid := e.session("")
	e.do(http.MethodGet, "/v1/hotels", sid, nil)

	res := e.do(http.MethodPost, "/v1/hotels/2/reviews", sid, map[string]any{"rating": 9, "text": "x"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	out := decode[submitted](t, res)
	assert.Equal(t, "pending", out.Entry.Status)
	assert.Nil(t, out.Entry.Review.ID)
	assert.NotEmpty(t, out.Entry.Review.LocalID)
	assert.Equal(t, "Anonymous", out.Entry.Review.Author)
	assert.Equal(t, 5, out.Entry.Review.Rating)
	assert.Equal(t, 257, out.Summary.Count)

	// the listing keeps the optimistic entry rather than refetching
	res = e.do(http.MethodGet, "/v1/hotels", sid, nil)
	cards := decode[[]card](t, res)
	assert.Equal(t, 257, cards[1].Summary.Count)
	assert.Equal(t, 1, cards[1].Summary.Pending)

	// once the service recovers the reconcile pass confirms it in place
	e.up.set(func() { e.up.failPost = false })
	assert.Equal(t, 1, e.views.Reconcile(context.Background()))

	res = e.do(http.MethodGet, "/v1/hotels", sid, nil)
	cards = decode[[]card](t, res)
	assert.Equal(t, 257, cards[1].Summary.Count)
	assert.Zero(t, cards[1].Summary.Pending)
}

func TestSubmit_BeforeDisplayThenListLoadsServerReviews(t *testing.T) {
	e := newEnv(t)
	sid := e.session("Priya")

	res := e.do(http.MethodPost, "/v1/hotels/1/reviews", sid, map[string]any{"rating": 5})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "confirmed", decode[submitted](t, res).Entry.Status)

	// the first display replaces the seeded state with the service's list
	res = e.do(http.MethodGet, "/v1/hotels", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cards := decode[[]card](t, res)
	assert.Equal(t, 3, cards[0].Summary.Count)
	assert.InDelta(t, 14.0/3.0, cards[0].Summary.Average, 1e-9)

	res = e.do(http.MethodGet, "/v1/hotels/1/reviews", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]any](t, res)
	assert.EqualValues(t, 3, body["summary"].(map[string]any)["count"])
}

func TestListReviews_AfterSubmitLoadsServerReviews(t *testing.T) {
	e := newEnv(t)
	sid := e.session("")

	res := e.do(http.MethodPost, "/v1/hotels/1/reviews", sid, map[string]any{"rating": 3})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = e.do(http.MethodGet, "/v1/hotels/1/reviews", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]any](t, res)
	assert.EqualValues(t, 3, body["summary"].(map[string]any)["count"])
	assert.InDelta(t, 4.0, body["summary"].(map[string]any)["average"], 1e-9)
}

func TestEditComposer_RequiresMountedView(t *testing.T) {
	e := newEnv(t)
	sid := e.session("")
	res := e.do(http.MethodPut, "/v1/hotels/1/composer", sid, map[string]any{"rating": 3})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Zero(t, e.views.Len())
}

func TestSubmit_UnknownHotelAndBadID(t *testing.T) {
	e := newEnv(t)
	sid := e.session("")
	res := e.do(http.MethodPost, "/v1/hotels/99/reviews", sid, map[string]any{"rating": 4})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = e.do(http.MethodPost, "/v1/hotels/abc/reviews", sid, map[string]any{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = e.do(http.MethodPost, "/v1/hotels/1/reviews", sid, map[string]any{"rating": 4, "bogus": true})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestListReviews_Paginates(t *testing.T) {
	e := newEnv(t)
	list := make([]map[string]any, 0, 25)
	for i := 0; i < 25; i++ {
		list = append(list, map[string]any{"id": i + 1, "userName": fmt.Sprintf("u%d", i), "rating": 4})
	}
	e.up.set(func() { e.up.reviews[3] = list })
	sid := e.session("")

	res := e.do(http.MethodGet, "/v1/hotels/3/reviews?page=3", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := decode[struct {
		Summary struct {
			Count int `json:"count"`
		} `json:"summary"`
		Reviews struct {
			Items      []map[string]any `json:"items"`
			Page       int              `json:"page"`
			TotalPages int              `json:"totalPages"`
		} `json:"reviews"`
	}](t, res)
	assert.Equal(t, 25, page.Summary.Count)
	assert.Equal(t, 3, page.Reviews.TotalPages)
	assert.Len(t, page.Reviews.Items, 5)

	// out-of-range pages clamp to the last one
	res = e.do(http.MethodGet, "/v1/hotels/3/reviews?page=9", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]any](t, res)
	assert.EqualValues(t, 3, body["reviews"].(map[string]any)["page"])

	res = e.do(http.MethodGet, "/v1/hotels/3/reviews?page=x", sid, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSession_ValidationReadAndClear(t *testing.T) {
	e := newEnv(t)
	res := e.do(http.MethodPost, "/v1/session", "", map[string]string{"name": "a", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	p := decode[map[string]any](t, res)
	assert.Contains(t, p["errors"], "email")

	sid := e.session("Meera")
	res = e.do(http.MethodGet, "/v1/session", sid, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Meera", decode[map[string]any](t, res)["name"])

	e.do(http.MethodGet, "/v1/hotels", sid, nil)
	require.Equal(t, 1, e.views.Len())

	res = e.do(http.MethodDelete, "/v1/session", sid, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Zero(t, e.views.Len())

	res = e.do(http.MethodGet, "/v1/session", sid, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUnmountView(t *testing.T) {
	e := newEnv(t)
	sid := e.session("")
	res := e.do(http.MethodDelete, "/v1/view", sid, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	e.do(http.MethodGet, "/v1/hotels", sid, nil)
	res = e.do(http.MethodDelete, "/v1/view", sid, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Zero(t, e.views.Len())
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t)
	res := e.do(http.MethodOptions, "/v1/hotels", "", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "GET",
		"Access-Control-Request-Headers", httpserver.SessionHeader)
	assert.Equal(t, "http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(strings.ToLower(res.Header.Get("Access-Control-Allow-Headers")), "x-session-id"))
}
