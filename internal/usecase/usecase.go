package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/snip/internal/entity"
	"github.com/vadimbarashkov/snip/internal/validation"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	minShortCodeLength       = 3
	maxShortCodeLength       = 10
	defaultShortCodeLength   = 6
	defaultTopURLsLimit      = 10
	defaultClicksByDayWindow = 7
)

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

var schemeRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

type urlRepository interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error)
	RetrieveClicks(ctx context.Context, shortCode string) ([]entity.Click, error)
	Remove(ctx context.Context, shortCode string) error
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context, topLimit, days int) (*entity.Stats, error)
}

type metricsRecorder interface {
	RecordURLCreated()
	RecordURLDeleted()
	RecordRedirect()
	RecordClick()
}

type Option func(*URLUseCase)

// WithShortCodeLength sets the generated code length. Lengths outside [3, 10] keep the default.
func WithShortCodeLength(n int) Option {
	return func(uc *URLUseCase) {
		if n >= minShortCodeLength && n <= maxShortCodeLength {
			uc.shortCodeLength = n
		}
	}
}

func WithTopURLsLimit(n int) Option {
	return func(uc *URLUseCase) {
		if n > 0 {
			uc.topURLsLimit = n
		}
	}
}

func WithClicksByDayWindow(days int) Option {
	return func(uc *URLUseCase) {
		if days > 0 {
			uc.clicksByDayWindow = days
		}
	}
}

// WithReservedShortCodes forbids codes that would be shadowed by other routes.
func WithReservedShortCodes(codes ...string) Option {
	return func(uc *URLUseCase) {
		for _, code := range codes {
			uc.reserved[code] = struct{}{}
		}
	}
}

type URLUseCase struct {
	shortCodeLength   int
	topURLsLimit      int
	clicksByDayWindow int
	reserved          map[string]struct{}
	urlRepo           urlRepository
	metrics           metricsRecorder
	validate          *validator.Validate
}

func NewURLUseCase(urlRepo urlRepository, metrics metricsRecorder, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		shortCodeLength:   defaultShortCodeLength,
		topURLsLimit:      defaultTopURLsLimit,
		clicksByDayWindow: defaultClicksByDayWindow,
		reserved:          make(map[string]struct{}),
		urlRepo:           urlRepo,
		metrics:           metrics,
		validate:          validation.New(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// NormalizeURL trims the raw URL and prefixes it with https:// when it carries no scheme.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || schemeRegexp.MatchString(rawURL) {
		return rawURL
	}
	return "https://" + rawURL
}

// ShortenURL stores the normalized original URL under a new short code.
// When customCode is empty the code is generated and regenerated on collision.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL, customCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"
	const maxRetries = 10

	originalURL = NormalizeURL(originalURL)
	if err := uc.validate.Var(originalURL, "required,http_url"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if customCode != "" {
		if err := uc.validate.Var(customCode, validation.ShortCodeTag); err != nil {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidShortCode)
		}
		if uc.isReserved(customCode) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		url, err := uc.urlRepo.Save(ctx, customCode, originalURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		uc.metrics.RecordURLCreated()
		return url, nil
	}

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.Generate(shortCodeAlphabet, uc.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}
		if uc.isReserved(shortCode) {
			continue
		}

		url, err := uc.urlRepo.Save(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		uc.metrics.RecordURLCreated()
		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *URLUseCase) isReserved(shortCode string) bool {
	_, ok := uc.reserved[shortCode]
	return ok
}

// ResolveShortCode records a visit of the short code and returns the updated URL.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode, visitor)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	uc.metrics.RecordRedirect()
	return url, nil
}

// RecordClick counts a visit that happened outside of the redirect endpoint.
func (uc *URLUseCase) RecordClick(ctx context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error) {
	const op = "usecase.URLUseCase.RecordClick"

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode, visitor)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to record click: %w", op, err)
	}

	uc.metrics.RecordClick()
	return url, nil
}

func (uc *URLUseCase) GetURL(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURL"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) GetClicks(ctx context.Context, shortCode string) ([]entity.Click, error) {
	const op = "usecase.URLUseCase.GetClicks"

	clicks, err := uc.urlRepo.RetrieveClicks(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get clicks: %w", op, err)
	}

	return clicks, nil
}

func (uc *URLUseCase) DeleteURL(ctx context.Context, shortCode string) error {
	const op = "usecase.URLUseCase.DeleteURL"

	if err := uc.urlRepo.Remove(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	uc.metrics.RecordURLDeleted()
	return nil
}

func (uc *URLUseCase) GetStats(ctx context.Context) (*entity.Stats, error) {
	const op = "usecase.URLUseCase.GetStats"

	stats, err := uc.urlRepo.Stats(ctx, uc.topURLsLimit, uc.clicksByDayWindow)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get stats: %w", op, err)
	}

	return stats, nil
}

func (uc *URLUseCase) CountURLs(ctx context.Context) (int, error) {
	const op = "usecase.URLUseCase.CountURLs"

	n, err := uc.urlRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count urls: %w", op, err)
	}

	return n, nil
}
