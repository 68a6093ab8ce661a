// Package announce pushes articles that were not seen in earlier runs to the configured publishers.
package announce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/publishers"
)

// Ledger records which article ids have already been announced.
type Ledger interface {
	Unseen(ids []string) ([]string, error)
	Mark(ids []string, at time.Time) error
}

// Announcer fans new articles out to every publisher.
type Announcer struct {
	ledger Ledger
	pubs   []publishers.Publisher
	runID  string
	log    logger.Logger
	now    func() time.Time
}

// New returns an Announcer. A nil log discards output.
func New(ledger Ledger, pubs []publishers.Publisher, runID string, log logger.Logger) *Announcer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Announcer{ledger: ledger, pubs: pubs, runID: runID, log: log, now: time.Now}
}

// Announce publishes articles absent from the ledger and returns how many were delivered.
// An article is recorded only once every publisher accepted it, so failures are retried next run.
func (a *Announcer) Announce(ctx context.Context, articles []domain.Article) (int, error) {
	if len(a.pubs) == 0 || len(articles) == 0 {
		return 0, nil
	}

	byID := make(map[string]domain.Article, len(articles))
	ids := make([]string, 0, len(articles))
	for _, art := range articles {
		if art.ID == "" {
			continue
		}
		if _, dup := byID[art.ID]; dup {
			continue
		}
		byID[art.ID] = art
		ids = append(ids, art.ID)
	}

	fresh, err := a.ledger.Unseen(ids)
	if err != nil {
		return 0, fmt.Errorf("announce: %w", err)
	}
	if len(fresh) == 0 {
		a.log.InfoObj("no new articles to announce", "announce_skip", map[string]any{"candidates": len(ids)})
		return 0, nil
	}

	var (
		delivered []string
		errs      []error
	)
	for _, id := range fresh {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		evt := publishers.NewEvent(a.runID, byID[id])
		if err := a.publish(ctx, evt); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = append(delivered, id)
	}

	if err := a.ledger.Mark(delivered, a.now()); err != nil {
		errs = append(errs, fmt.Errorf("announce: %w", err))
	}

	a.log.InfoObj("announced new articles", "announce_done", map[string]any{
		"candidates": len(ids),
		"new":        len(fresh),
		"delivered":  len(delivered),
		"failed":     len(fresh) - len(delivered),
	})
	return len(delivered), errors.Join(errs...)
}

func (a *Announcer) publish(ctx context.Context, evt publishers.Event) error {
	var errs []error
	for _, p := range a.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			a.log.WarnObj("publisher rejected article", "announce_publish_failed", map[string]any{
				"publisher_id": p.ID(),
				"article_id":   evt.ID,
				"error":        err,
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
