package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/snip/internal/entity"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL, customCode string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error)
	RecordClick(ctx context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error)
	GetURL(ctx context.Context, shortCode string) (*entity.URL, error)
	GetClicks(ctx context.Context, shortCode string) ([]entity.Click, error)
	DeleteURL(ctx context.Context, shortCode string) error
	GetStats(ctx context.Context) (*entity.Stats, error)
	CountURLs(ctx context.Context) (int, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
	now      func() time.Time
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// shortURL builds the public link of the short code. Without a configured
// base URL it is derived from the request.
func (h *urlHandler) shortURL(r *http.Request, shortCode string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + shortCode
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}

	return scheme + "://" + r.Host + "/" + shortCode
}

func visitorFromRequest(r *http.Request) entity.Visitor {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return entity.Visitor{
		UserAgent: r.UserAgent(),
		IP:        ip,
	}
}

func logOperation(ctx context.Context, op, shortCode string) {
	httplog.LogEntrySetFields(ctx, map[string]any{
		"op":         op,
		"short_code": shortCode,
	})
}

// renderError maps use case errors to responses. Unexpected errors are
// attached to the request log and answered with a generic message.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
	case errors.Is(err, entity.ErrInvalidURL):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidURLResponse)
	case errors.Is(err, entity.ErrInvalidShortCode):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidShortCodeResponse)
	case errors.Is(err, entity.ErrShortCodeExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, shortCodeExistsResponse)
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.OriginalURL, req.CustomCode)
	if err != nil {
		logOperation(r.Context(), "shorten", req.CustomCode)
		renderError(w, r, err)
		return
	}

	logOperation(r.Context(), "shorten", url.ShortCode)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toURLResponse(url, h.shortURL(r, url.ShortCode)))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode, visitorFromRequest(r))
	logOperation(r.Context(), "redirect", shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) getURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.GetURL(r.Context(), shortCode)
	logOperation(r.Context(), "get_url", shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url, h.shortURL(r, url.ShortCode)))
}

func (h *urlHandler) recordClick(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.RecordClick(r.Context(), shortCode, visitorFromRequest(r))
	logOperation(r.Context(), "record_click", shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, clickResponse{Success: true, Clicks: url.Clicks})
}

func (h *urlHandler) getClicks(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	clicks, err := h.useCase.GetClicks(r.Context(), shortCode)
	logOperation(r.Context(), "get_clicks", shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toClicksResponse(shortCode, clicks))
}

func (h *urlHandler) deleteURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	err := h.useCase.DeleteURL(r.Context(), shortCode)
	logOperation(r.Context(), "delete", shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, deleteResponse{Success: true, Message: "url deleted successfully"})
}

func (h *urlHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.useCase.GetStats(r.Context())
	httplog.LogEntrySetField(r.Context(), "op", slog.StringValue("stats"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(stats))
}

func (h *urlHandler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.useCase.CountURLs(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC(),
		URLsCount: n,
	})
}
