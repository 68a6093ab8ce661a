package publishers

import (
	"context"
	"time"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
)

// Logger is the structured logger publishers report through.
type Logger = logger.Logger

// Event is the payload announced for one article.
type Event struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Keyword     string    `json:"keyword"`
	Channel     string    `json:"channel"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishTime string    `json:"publish_time"`
	IsRecent    bool      `json:"is_recent_24h"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// NewEvent builds the event for art within the given run.
func NewEvent(runID string, art domain.Article) Event {
	return Event{
		ID:          art.ID,
		RunID:       runID,
		Keyword:     art.Keyword,
		Channel:     art.Channel,
		Title:       art.Title,
		Link:        art.Link,
		PublishTime: art.PublishTime,
		IsRecent:    art.IsRecent,
		ScrapedAt:   art.ScrapedAt,
	}
}

// Publisher delivers events to one downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
	Close() error
}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
