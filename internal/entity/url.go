// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, along with its
// click statistics, and the aggregate statistics over all stored URLs.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrInvalidURL is returned when the original URL is empty or is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidShortCode is returned when a custom short code doesn't match the allowed format.
	ErrInvalidShortCode = errors.New("invalid short code")
)

// URL represents a shortened URL.
type URL struct {
	ShortCode   string    // ShortCode is the code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	URLStats              // URLStats contains statistics about the URL.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	Clicks       int64      // Clicks is the number of times the shortened URL has been visited.
	LastAccessed *time.Time // LastAccessed is the time of the latest visit, nil if never visited.
}
