package entity

import "time"

// Visitor describes the client that followed a short link.
type Visitor struct {
	UserAgent string
	IP        string
}

// Click is a single recorded visit of a shortened URL.
type Click struct {
	ID        string
	Timestamp time.Time
	Visitor
}
