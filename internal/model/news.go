package model

// Headline is one news item attached to a ticker.
type Headline struct {
	Title     string
	URL       string
	Published string
}
