package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/snip/internal/entity"
	"github.com/vadimbarashkov/snip/internal/validation"
)

const statusError = "error"

// shortenRequest represents the structure for a request to shorten a URL.
// Fields the service doesn't support, such as a validity period, are ignored.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required"`
	CustomCode  string `json:"customCode" validate:"omitempty,shortcode"`
}

// urlResponse represents the structure for a response containing shortened URL information.
type urlResponse struct {
	ShortCode    string     `json:"shortCode"`
	OriginalURL  string     `json:"originalUrl"`
	ShortURL     string     `json:"shortUrl"`
	Clicks       int64      `json:"clicks"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed"`
}

func toURLResponse(url *entity.URL, shortURL string) urlResponse {
	return urlResponse{
		ShortCode:    url.ShortCode,
		OriginalURL:  url.OriginalURL,
		ShortURL:     shortURL,
		Clicks:       url.Clicks,
		CreatedAt:    url.CreatedAt,
		LastAccessed: url.LastAccessed,
	}
}

type clickResponse struct {
	Success bool  `json:"success"`
	Clicks  int64 `json:"clicks"`
}

type clicksResponse struct {
	ShortCode string      `json:"shortCode"`
	Clicks    []clickItem `json:"clicks"`
}

type clickItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	IP        string    `json:"ip"`
}

func toClicksResponse(shortCode string, clicks []entity.Click) clicksResponse {
	resp := clicksResponse{
		ShortCode: shortCode,
		Clicks:    make([]clickItem, 0, len(clicks)),
	}

	for _, c := range clicks {
		resp.Clicks = append(resp.Clicks, clickItem{
			ID:        c.ID,
			Timestamp: c.Timestamp,
			UserAgent: c.UserAgent,
			IP:        c.IP,
		})
	}

	return resp
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statsResponse represents the aggregate statistics over all shortened URLs.
type statsResponse struct {
	TotalURLs     int           `json:"totalUrls"`
	TotalClicks   int64         `json:"totalClicks"`
	AverageClicks float64       `json:"averageClicks"`
	TopURLs       []topURL      `json:"topUrls"`
	ClicksByDay   []dailyClicks `json:"clicksByDay"`
}

type topURL struct {
	ShortCode   string `json:"shortCode"`
	OriginalURL string `json:"originalUrl"`
	Clicks      int64  `json:"clicks"`
}

type dailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

func toStatsResponse(stats *entity.Stats) statsResponse {
	resp := statsResponse{
		TotalURLs:     stats.TotalURLs,
		TotalClicks:   stats.TotalClicks,
		AverageClicks: stats.AverageClicks,
		TopURLs:       make([]topURL, 0, len(stats.TopURLs)),
		ClicksByDay:   make([]dailyClicks, 0, len(stats.ClicksByDay)),
	}

	for _, u := range stats.TopURLs {
		resp.TopURLs = append(resp.TopURLs, topURL{
			ShortCode:   u.ShortCode,
			OriginalURL: u.OriginalURL,
			Clicks:      u.Clicks,
		})
	}

	for _, d := range stats.ClicksByDay {
		resp.ClicksByDay = append(resp.ClicksByDay, dailyClicks{
			Date:   d.Date,
			Clicks: d.Clicks,
		})
	}

	return resp
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	URLsCount int       `json:"urlsCount"`
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	invalidURLResponse = errorResponse{
		Status:  statusError,
		Message: "invalid url",
	}

	invalidShortCodeResponse = errorResponse{
		Status:  statusError,
		Message: "invalid short code",
	}

	shortCodeExistsResponse = errorResponse{
		Status:  statusError,
		Message: "short code already in use",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case validation.ShortCodeTag:
		return "must be 3-10 characters long and contain only letters, numbers and hyphens"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
