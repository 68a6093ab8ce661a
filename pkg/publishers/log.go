package publishers

import "context"

// logPublisher writes events to the application log. Useful for dry runs.
type logPublisher struct {
	id  string
	log Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	return &logPublisher{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (p *logPublisher) ID() string   { return p.id }
func (p *logPublisher) Type() string { return TypeLog }

func (p *logPublisher) Publish(_ context.Context, evt Event) error {
	p.log.InfoObj("new article", "publisher_log_event", map[string]any{
		"publisher_id": p.id,
		"article_id":   evt.ID,
		"keyword":      evt.Keyword,
		"title":        evt.Title,
		"link":         evt.Link,
		"recent":       evt.IsRecent,
	})
	return nil
}

func (p *logPublisher) Close() error { return nil }
