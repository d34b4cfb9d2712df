package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mborhani/vizboard/internal/chart"
	"github.com/mborhani/vizboard/internal/ingest"
	"github.com/mborhani/vizboard/internal/projection"
	"github.com/mborhani/vizboard/internal/session"
)

const sessionCookie = "vb_session"

// DashboardHandler serves the dashboard API. Each route maps a UI
// event onto the pipeline, or reads derived state back out.
type DashboardHandler struct {
	Sessions  session.Store
	Pipeline  *Pipeline
	TTL       time.Duration
	PNGWidth  int
	PNGHeight int
}

func (h *DashboardHandler) Register(g *echo.Group) {
	g.POST("/upload", h.upload)
	g.POST("/url", h.url)
	g.POST("/selection", h.selection)
	g.GET("/columns", h.columns)
	g.GET("/chart", h.chart)
	g.GET("/chart.png", h.chartPNG)
}

// bind returns the caller's session, minting one (and setting the
// cookie) on first contact.
func (h *DashboardHandler) bind(c echo.Context) (session.Session, error) {
	var id string
	if ck, err := c.Cookie(sessionCookie); err == nil {
		id = ck.Value
	}
	sess, err := h.Sessions.EnsureSession(id, h.TTL)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	if sess.ID() != id {
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(h.TTL),
		})
	}
	return sess, nil
}

// lookup returns the caller's existing session, or nil when none
// exists. Read-only routes use it so a stray GET never mints state.
func (h *DashboardHandler) lookup(c echo.Context) (session.Session, error) {
	ck, err := c.Cookie(sessionCookie)
	if err != nil || ck.Value == "" {
		return nil, nil
	}
	sess, err := h.Sessions.GetSession(ck.Value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return sess, nil
}

// dispatch runs one event through the pipeline and persists the
// resulting session state.
func (h *DashboardHandler) dispatch(c echo.Context, sess session.Session, ev Event) error {
	st, err := sess.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out, err := h.Pipeline.Dispatch(c.Request().Context(), &st, ev)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := sess.Set(st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) upload(c echo.Context) error {
	sess, err := h.bind(c)
	if err != nil {
		return err
	}
	var req ingest.RawUpload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Filename == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename and content_base64 required")
	}
	return h.dispatch(c, sess, Event{Kind: EventUpload, Upload: &req})
}

func (h *DashboardHandler) url(c echo.Context) error {
	sess, err := h.bind(c)
	if err != nil {
		return err
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url required")
	}
	return h.dispatch(c, sess, Event{Kind: EventURL, URL: req.URL})
}

// selection applies x/y/type dropdown changes. The shell sends only
// the control that changed; each present field becomes its own event
// so the stage table stays one-event-one-stage-list.
func (h *DashboardHandler) selection(c echo.Context) error {
	sess, err := h.bind(c)
	if err != nil {
		return err
	}
	var req struct {
		X         *string `json:"x"`
		Y         *string `json:"y"`
		ChartType *string `json:"chart_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	st, err := sess.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var out Update
	applied := false
	for _, ev := range selectionEvents(req.X, req.Y, req.ChartType) {
		applied = true
		out, err = h.Pipeline.Dispatch(c.Request().Context(), &st, ev)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if !applied {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to change")
	}
	if err := sess.Set(st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func selectionEvents(x, y, typ *string) []Event {
	var evs []Event
	if x != nil {
		evs = append(evs, Event{Kind: EventXChanged, X: *x})
	}
	if y != nil {
		evs = append(evs, Event{Kind: EventYChanged, Y: *y})
	}
	if typ != nil {
		evs = append(evs, Event{Kind: EventTypeChanged, ChartType: *typ})
	}
	return evs
}

func (h *DashboardHandler) columns(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return err
	}
	if sess == nil {
		return c.JSON(http.StatusOK, projection.Project(""))
	}
	st, err := sess.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, projection.Project(st.Snapshot))
}

func (h *DashboardHandler) chart(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return err
	}
	if sess == nil {
		return c.JSON(http.StatusOK, chart.Empty())
	}
	st, err := sess.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	spec := chart.Build(st.Snapshot, st.X, st.Y, chart.Type(st.ChartType), h.Pipeline.TransitionMS)
	h.Pipeline.Tele.CountChart(st.ChartType)
	return c.JSON(http.StatusOK, spec)
}

func (h *DashboardHandler) chartPNG(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return err
	}
	if sess == nil {
		return c.NoContent(http.StatusNoContent)
	}
	st, err := sess.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var buf bytes.Buffer
	err = chart.Render(&buf, st.Snapshot, st.X, st.Y, chart.Type(st.ChartType), h.PNGWidth, h.PNGHeight)
	if errors.Is(err, chart.ErrEmptyChart) {
		// nothing selected yet; answer with no image
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
