package web

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	lo "github.com/samber/lo"

	"pr-dashboard/connectors/chart"
	"pr-dashboard/connectors/session"
	"pr-dashboard/domain/pr"
)

const (
	sessionKey = "session"
	loadNotice = "Failed to load PR data from CSV file. Please ensure the data source exists and is accessible."
)

var textPolicy = bluemonday.StrictPolicy()

type handler struct {
	dash     *Dashboard
	board    *chart.Board
	sessions *session.Store
}

// requireSession rejects requests without a live session. API callers get
// 401 JSON, page requests are redirected to the login form.
func (h *handler) requireSession(api bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(session.CookieName); err == nil {
				if sess, ok := h.sessions.Get(ck.Value); ok {
					c.Set(sessionKey, sess)
					return next(c)
				}
			}
			if api {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error":   "unauthorized",
					"message": "login required",
				})
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
	}
}

func (h *handler) loginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]any{
		"Error":    "",
		"Username": "",
	})
}

func (h *handler) login(c echo.Context) error {
	username := c.FormValue("username")
	id, ok := h.sessions.Login(username, c.FormValue("password"))
	if !ok {
		return c.Render(http.StatusUnauthorized, "login.html", map[string]any{
			"Error":    "Invalid credentials. Please try again.",
			"Username": username,
		})
	}
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *handler) logout(c echo.Context) error {
	if ck, err := c.Cookie(session.CookieName); err == nil {
		h.sessions.Logout(ck.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.IsTLS(),
	})
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *handler) page(c echo.Context) error {
	sess, _ := c.Get(sessionKey).(session.Session)
	snap, err := h.dash.Snapshot()
	if err != nil {
		return c.Render(http.StatusServiceUnavailable, "notice.html", map[string]any{
			"Notice":  loadNotice,
			"Detail":  err.Error(),
			"Session": sess,
		})
	}
	return c.Render(http.StatusOK, "dashboard.html", map[string]any{
		"Session":  sess,
		"Snapshot": snap,
		"Start":    formatDay(snap.Range.Start, h.dash.Location()),
		"End":      formatDay(snap.Range.End, h.dash.Location()),
		"Charts":   chart.Names,
	})
}

func (h *handler) snapshot(c echo.Context) error {
	snap, err := h.dash.Snapshot()
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, sanitizeSnapshot(snap))
}

func (h *handler) charts(c echo.Context) error {
	if _, err := h.dash.Snapshot(); err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, h.board.Charts())
}

func (h *handler) table(c echo.Context) error {
	snap, err := h.dash.Snapshot()
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, sanitizeRows(snap.Table))
}

func (h *handler) session(c echo.Context) error {
	sess, _ := c.Get(sessionKey).(session.Session)
	return c.JSON(http.StatusOK, sess)
}

type rangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *handler) setRange(c echo.Context) error {
	var req rangeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	r, err := parseRange(req, h.dash.Location())
	if err != nil {
		return badRequest(c, err)
	}
	snap, err := h.dash.SetRange(r)
	if errors.Is(err, ErrInvalidRange) {
		return badRequest(c, err)
	}
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, sanitizeSnapshot(snap))
}

type viewRequest struct {
	View string `json:"view"`
}

func (h *handler) setView(c echo.Context) error {
	var req viewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	v, ok := pr.ParseViewType(req.View)
	if !ok {
		return badRequest(c, fmt.Errorf("unknown view type %q", req.View))
	}
	snap, err := h.dash.SetViewType(v)
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, sanitizeSnapshot(snap))
}

func (h *handler) reload(c echo.Context) error {
	if err := h.dash.Load(c.Request().Context()); err != nil {
		return unavailable(c, err)
	}
	snap, err := h.dash.Snapshot()
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, sanitizeSnapshot(snap))
}

// parseRange reads YYYY-MM-DD or RFC 3339 bounds. A date-only end covers
// the whole day. Empty bounds stay nil.
func parseRange(req rangeRequest, loc *time.Location) (pr.DateRange, error) {
	var r pr.DateRange
	if s := strings.TrimSpace(req.Start); s != "" {
		t, ok := pr.ParseTime(s, loc)
		if !ok {
			return r, fmt.Errorf("invalid start %q", req.Start)
		}
		r.Start = &t
	}
	if s := strings.TrimSpace(req.End); s != "" {
		t, ok := pr.ParseTime(s, loc)
		if !ok {
			return r, fmt.Errorf("invalid end %q", req.End)
		}
		if isDateOnly(s) {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		r.End = &t
	}
	return r, nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func formatDay(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("2006-01-02")
}

// plainText strips markup from CSV values before they leave as JSON.
func plainText(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

func sanitizeRows(rows []pr.TableRow) []pr.TableRow {
	return lo.Map(rows, func(r pr.TableRow, _ int) pr.TableRow {
		r.ID = plainText(r.ID)
		r.Title = plainText(r.Title)
		r.Creator = plainText(r.Creator)
		r.Status = plainText(r.Status)
		return r
	})
}

func sanitizeSnapshot(s pr.Snapshot) pr.Snapshot {
	s.Table = sanitizeRows(s.Table)
	return s
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error":   err.Error(),
		"message": "invalid request",
	})
}

func unavailable(c echo.Context, err error) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]any{
		"error":   err.Error(),
		"message": loadNotice,
	})
}
