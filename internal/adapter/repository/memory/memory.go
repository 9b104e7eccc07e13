// Package memory implements the URL repository on top of an in-process map.
// Records live only as long as the process does.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/snip/internal/entity"
)

const defaultClickHistoryLimit = 1000

type Option func(*URLRepository)

// WithClock replaces the time source used for creation and visit timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *URLRepository) {
		r.now = now
	}
}

// WithClickHistoryLimit sets how many clicks are retained per URL.
// The oldest clicks are dropped first.
func WithClickHistoryLimit(n int) Option {
	return func(r *URLRepository) {
		r.clickHistoryLimit = n
	}
}

type urlRecord struct {
	seq    uint64
	url    entity.URL
	clicks []entity.Click
}

func (rec *urlRecord) toEntity() *entity.URL {
	url := rec.url
	if rec.url.LastAccessed != nil {
		lastAccessed := *rec.url.LastAccessed
		url.LastAccessed = &lastAccessed
	}
	return &url
}

type URLRepository struct {
	mu                sync.RWMutex
	records           map[string]*urlRecord
	seq               uint64
	now               func() time.Time
	clickHistoryLimit int
}

func NewURLRepository(opts ...Option) *URLRepository {
	r := &URLRepository{
		records:           make(map[string]*urlRecord),
		now:               time.Now,
		clickHistoryLimit: defaultClickHistoryLimit,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *URLRepository) Save(_ context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Save"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	r.seq++
	rec := &urlRecord{
		seq: r.seq,
		url: entity.URL{
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			CreatedAt:   r.now(),
		},
	}
	r.records[shortCode] = rec

	return rec.toEntity(), nil
}

func (r *URLRepository) RetrieveByShortCode(_ context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveByShortCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return rec.toEntity(), nil
}

// RetrieveAndUpdateStats registers a visit of the URL and returns its state after the update.
func (r *URLRepository) RetrieveAndUpdateStats(_ context.Context, shortCode string, visitor entity.Visitor) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveAndUpdateStats"

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	now := r.now()
	rec.url.Clicks++
	rec.url.LastAccessed = &now

	if r.clickHistoryLimit > 0 {
		rec.clicks = append(rec.clicks, entity.Click{
			ID:        uuid.NewString(),
			Timestamp: now,
			Visitor:   visitor,
		})
		if overflow := len(rec.clicks) - r.clickHistoryLimit; overflow > 0 {
			rec.clicks = slices.Delete(rec.clicks, 0, overflow)
		}
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) Remove(_ context.Context, shortCode string) error {
	const op = "adapter.repository.memory.URLRepository.Remove"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[shortCode]; !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	delete(r.records, shortCode)

	return nil
}

func (r *URLRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records), nil
}

// RetrieveClicks returns the retained click history of the URL, oldest first.
func (r *URLRepository) RetrieveClicks(_ context.Context, shortCode string) ([]entity.Click, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveClicks"

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return slices.Clone(rec.clicks), nil
}

// Stats aggregates all stored URLs. topLimit bounds the ranking of the most
// visited URLs and days is the number of UTC days, today included, covered
// by the daily clicks series.
func (r *URLRepository) Stats(_ context.Context, topLimit, days int) (*entity.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entity.Stats{
		TotalURLs:   len(r.records),
		TopURLs:     []entity.TopURL{},
		ClicksByDay: []entity.DailyClicks{},
	}

	recs := make([]*urlRecord, 0, len(r.records))
	for _, rec := range r.records {
		stats.TotalClicks += rec.url.Clicks
		recs = append(recs, rec)
	}

	if stats.TotalURLs > 0 {
		avg := float64(stats.TotalClicks) / float64(stats.TotalURLs)
		stats.AverageClicks = math.Round(avg*100) / 100
	}

	slices.SortFunc(recs, func(a, b *urlRecord) int {
		if c := cmp.Compare(b.url.Clicks, a.url.Clicks); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	for _, rec := range recs[:max(0, min(topLimit, len(recs)))] {
		stats.TopURLs = append(stats.TopURLs, entity.TopURL{
			ShortCode:   rec.url.ShortCode,
			OriginalURL: rec.url.OriginalURL,
			Clicks:      rec.url.Clicks,
		})
	}

	stats.ClicksByDay = r.clicksByDay(recs, days)

	return stats, nil
}

func (r *URLRepository) clicksByDay(recs []*urlRecord, days int) []entity.DailyClicks {
	series := make([]entity.DailyClicks, 0, max(days, 0))
	if days <= 0 {
		return series
	}

	y, m, d := r.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	index := make(map[string]int, days)
	for i := range days {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		index[date] = i
		series = append(series, entity.DailyClicks{Date: date})
	}

	for _, rec := range recs {
		for _, click := range rec.clicks {
			ts := click.Timestamp.UTC()
			if ts.Before(start) {
				continue
			}
			if i, ok := index[ts.Format(time.DateOnly)]; ok {
				series[i].Clicks++
			}
		}
	}

	return series
}
