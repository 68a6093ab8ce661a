package domain

import "time"

// Domain contains core models and interfaces.

// Article is one news item discovered for a keyword.
type Article struct {
	ID          string
	Title       string
	Link        string
	PublishTime string
	Description string
	Keyword     string
	Channel     string
	IsRecent    bool
	ScrapedAt   time.Time
}
