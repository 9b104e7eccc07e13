package entity

// Stats is the aggregate view over all stored URLs.
type Stats struct {
	TotalURLs     int
	TotalClicks   int64
	AverageClicks float64
	TopURLs       []TopURL
	ClicksByDay   []DailyClicks
}

// TopURL is an entry of the most visited URLs ranking.
type TopURL struct {
	ShortCode   string
	OriginalURL string
	Clicks      int64
}

// DailyClicks holds the number of clicks recorded during one UTC day.
type DailyClicks struct {
	Date   string // Date is formatted as YYYY-MM-DD.
	Clicks int64
}
