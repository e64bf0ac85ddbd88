package session

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/peergrade/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/export", h.Export)
	e.GET("/v1/summary", h.Summary)
}

// Export serves the aggregated results as a dated CSV attachment. The
// report is rendered in full before any header is committed, so a render
// failure can still surface as an error response.
func (h *Handler) Export(c echo.Context) error {
	snap := h.store.Snapshot()
	summaries := Summarize(snap.Categories, snap.Votes)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, snap.Categories, summaries); err != nil {
		h.logger.Error("csv export failed", "error", err)
		return shared.InternalError("export_failed", "failed to write report")
	}

	filename := fmt.Sprintf("grading_results_%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

type SummaryResponse struct {
	SessionID  string           `json:"sessionId"`
	Categories []Category       `json:"categories"`
	Subjects   []SubjectSummary `json:"subjects"`
}

// Summary serves the same aggregation as JSON for live display.
func (h *Handler) Summary(c echo.Context) error {
	snap := h.store.Snapshot()
	return c.JSON(http.StatusOK, SummaryResponse{
		SessionID:  snap.SessionID,
		Categories: snap.Categories,
		Subjects:   Summarize(snap.Categories, snap.Votes),
	})
}
