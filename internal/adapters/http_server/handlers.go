package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_front/internal/app"
	"hotel_front/internal/domain"
	"hotel_front/internal/session"
)

// DefaultMaxPrice is the upper end of the listing price slider.
const DefaultMaxPrice = 50000

type Handlers struct {
	Catalog  *app.CatalogService
	Views    *app.Views
	Sessions *session.Store
	Validate *Validator
	PageSize int
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/session", h.writeSession)
		r.Get("/session", h.readSession)
		r.Delete("/session", h.clearSession)

		r.Get("/hotels", h.listHotels)
		r.Delete("/view", h.unmountView)

		r.Get("/hotels/{id}/reviews", h.listReviews)
		r.Post("/hotels/{id}/reviews", h.submitReview)
		r.Post("/hotels/{id}/composer", h.toggleComposer)
		r.Put("/hotels/{id}/composer", h.editComposer)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemErrors(w, status, title, detail, nil)
}

func writeProblemErrors(w http.ResponseWriter, status int, title, detail string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var fe FieldErrors
	switch {
	case errors.As(err, &fe):
		writeProblemErrors(w, http.StatusBadRequest, "Invalid request", fe.Error(), fe)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrViewNotMounted):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrComposerBusy), errors.Is(err, domain.ErrComposerClosed):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with an ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decodeBody decodes an optional JSON body. It reports false with no error
// when the body is empty.
func decodeBody(r *http.Request, dst any) (bool, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func sessionID(r *http.Request) string { return strings.TrimSpace(r.Header.Get(SessionHeader)) }

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := sessionID(r)
	if sid == "" {
		writeProblem(w, http.StatusBadRequest, "Missing session", SessionHeader+" header is required")
		return "", false
	}
	return sid, true
}

func hotelIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

// ---- session ----

type sessionRequest struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

func (h *Handlers) writeSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if _, err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.Sessions.Write(r.Context(), session.Session{ID: sessionID(r), Name: req.Name, Email: req.Email})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(SessionHeader, s.ID)
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handlers) readSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	s, err := h.Sessions.Read(r.Context(), sid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) clearSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Clear(r.Context(), sid); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// liveSession resolves the caller's stored session. Views are only mounted
// for sessions that exist, so a made-up id never holds server state.
func (h *Handlers) liveSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sid, ok := requireSession(w, r)
	if !ok {
		return session.Session{}, false
	}
	s, err := h.Sessions.Read(r.Context(), sid)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusUnauthorized, "Unknown session", "create one with POST /v1/session")
		return session.Session{}, false
	}
	if err != nil {
		writeError(w, err)
		return session.Session{}, false
	}
	return s, true
}

// ---- hotels & view ----

type listQuery struct {
	MaxPrice  int64   `json:"maxPrice" validate:"gte=0"`
	MinRating float64 `json:"minRating" validate:"gte=0,lte=5"`
	Location  string  `json:"location" validate:"max=100"`
}

type summaryView struct {
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	AverageLabel string  `json:"averageLabel"`
	Stars        int     `json:"stars"`
	Pending      int     `json:"pending"`
}

type composerView struct {
	State string    `json:"state"`
	Draft app.Draft `json:"draft"`
}

type hotelCard struct {
	domain.Hotel
	Summary  summaryView  `json:"summary"`
	Composer composerView `json:"composer"`
}

func summarize(st domain.AggregateState) summaryView {
	pending := 0
	for _, e := range st.Reviews {
		if e.IsPending() {
			pending++
		}
	}
	return summaryView{
		Count:        st.Count,
		Average:      st.Average,
		AverageLabel: strconv.FormatFloat(st.Average, 'f', 1, 64),
		Stars:        domain.Stars(st.Average),
		Pending:      pending,
	}
}

func composerOf(v *app.View, hotelID int64) composerView {
	s, d := v.Composers.State(hotelID)
	return composerView{State: s.String(), Draft: d}
}

func parseListQuery(r *http.Request) (listQuery, error) {
	q := listQuery{MaxPrice: DefaultMaxPrice}
	vals := r.URL.Query()
	bad := FieldErrors{}
	if s := vals.Get("maxPrice"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			bad["maxPrice"] = "must be an integer"
		}
		q.MaxPrice = n
	}
	if s := vals.Get("minRating"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			bad["minRating"] = "must be a number"
		}
		q.MinRating = f
	}
	q.Location = strings.TrimSpace(vals.Get("location"))
	if len(bad) > 0 {
		return q, bad
	}
	return q, nil
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	q, err := parseListQuery(r)
	if err == nil {
		err = h.Validate.Validate(q)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	hotels, err := h.Catalog.ListHotels(r.Context(), domain.HotelsQuery{
		Location: q.Location, MaxPrice: q.MaxPrice, MinRating: q.MinRating,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	v := h.Views.Mount(sess.ID)
	var states []domain.AggregateState
	if r.URL.Query().Get("refresh") == "true" {
		states = v.LoadAll(r.Context(), hotels)
	} else {
		states = v.Show(r.Context(), hotels)
	}

	out := make([]hotelCard, len(hotels))
	for i, ht := range hotels {
		out[i] = hotelCard{Hotel: ht, Summary: summarize(states[i]), Composer: composerOf(v, ht.ID)}
	}
	writeCached(w, r, out)
}

func (h *Handlers) unmountView(w http.ResponseWriter, r *http.Request) {
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !h.Views.Unmount(sid) {
		writeError(w, domain.ErrViewNotMounted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- reviews ----

type reviewsPage struct {
	HotelID int64                  `json:"hotelId"`
	Summary summaryView            `json:"summary"`
	Reviews app.Page[domain.Entry] `json:"reviews"`
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	id, ok := hotelIDParam(w, r)
	if !ok {
		return
	}
	page := 1
	if ps := r.URL.Query().Get("page"); ps != "" {
		n, err := strconv.Atoi(ps)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid page", "page must be an integer")
			return
		}
		page = n
	}

	hotel, err := h.Catalog.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	v := h.Views.Mount(sess.ID)
	st, _ := v.Aggregator.State(id)
	if !v.Aggregator.Loaded(id) || r.URL.Query().Get("refresh") == "true" {
		st = v.Aggregator.LoadForHotel(r.Context(), hotel)
	}

	size := h.PageSize
	if size <= 0 {
		size = app.DefaultPageSize
	}
	page = app.ClampPage(page, app.TotalPages(len(st.Reviews), size))
	writeCached(w, r, reviewsPage{
		HotelID: id,
		Summary: summarize(st),
		Reviews: app.Paginate(st.Reviews, page, size),
	})
}

type draftRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text" validate:"max=2000"`
}

func (h *Handlers) toggleComposer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	id, ok := hotelIDParam(w, r)
	if !ok {
		return
	}
	v := h.Views.Mount(sess.ID)
	if _, err := v.Composers.Toggle(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, composerOf(v, id))
}

// editComposer changes the draft of an open composer. The view must already
// be mounted, since only a mounted view can have opened one.
func (h *Handlers) editComposer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	id, ok := hotelIDParam(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if _, err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if err := h.Validate.Validate(req); err != nil {
		writeError(w, err)
		return
	}
	v, mounted := h.Views.Get(sess.ID)
	if !mounted {
		writeError(w, domain.ErrViewNotMounted)
		return
	}
	if err := v.Composers.Edit(id, app.Draft{Rating: req.Rating, Text: req.Text}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, composerOf(v, id))
}

type submitResponse struct {
	Entry   domain.Entry `json:"entry"`
	Summary summaryView  `json:"summary"`
}

// submitReview posts the open draft, or the request body when one is given.
// The response is 201 whether the review was confirmed or kept pending.
func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	id, ok := hotelIDParam(w, r)
	if !ok {
		return
	}
	var req draftRequest
	hasBody, err := decodeBody(r, &req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	var override *app.Draft
	if hasBody {
		if err := h.Validate.Validate(req); err != nil {
			writeError(w, err)
			return
		}
		override = &app.Draft{Rating: req.Rating, Text: req.Text}
	}

	hotel, err := h.Catalog.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	v := h.Views.Mount(sess.ID)
	v.Aggregator.Ensure(hotel)

	st, e, err := v.Submit(r.Context(), id, sess.DisplayName(), override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Entry: e, Summary: summarize(st)})
}
