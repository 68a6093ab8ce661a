package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
)

func sampleArticles() []domain.Article {
	var out []domain.Article
	for i := 0; i < 5; i++ {
		out = append(out, domain.Article{
			Title:       "K story",
			Link:        "https://example.com/k/" + string(rune('a'+i)),
			PublishTime: "Unknown",
			Keyword:     "K",
			IsRecent:    i < 2,
		})
	}
	out = append(out, domain.Article{
		Title:       "Other story",
		Link:        "https://example.com/o",
		PublishTime: "Wed, 01 May 2024 08:30:00 GMT",
		Keyword:     "Other",
		IsRecent:    true,
	})
	return out
}

func fixedWriter(dir string) *Writer {
	w := NewWriter(dir, "", nil)
	w.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC) }
	return w
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

func TestExport_EmptyFailsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	w := fixedWriter(dir)

	path, err := w.Export(nil)
	assert.Empty(t, path)
	assert.ErrorIs(t, err, ErrNoArticles)

	var exportErr *ExportError
	assert.ErrorAs(t, err, &exportErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_WritesBothSheets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w := fixedWriter(dir)

	path, err := w.Export(sampleArticles())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "google_news_20240501_093015.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetArticles, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetArticles)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"title", "link", "publish_time", "query", "is_recent_24h", "scraped_at"}, rows[0])
	assert.Equal(t, "K story", rows[1][0])
	assert.Equal(t, "https://example.com/k/a", rows[1][1])
	assert.Equal(t, "Unknown", rows[1][2])
	assert.Equal(t, "K", rows[1][3])
	assert.True(t, isTrue(rows[1][4]))
	assert.False(t, isTrue(rows[3][4]))

	// one shared scrape time
	for _, row := range rows[1:] {
		assert.Equal(t, "2024-05-01 09:30:15", row[5])
	}

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Keyword", "Total_Articles", "Recent_24h"}, summary[0])
	assert.Equal(t, []string{"K", "5", "2"}, summary[1])
	assert.Equal(t, []string{"Other", "1", "1"}, summary[2])
}

func TestExport_ColumnWidthsAreCapped(t *testing.T) {
	arts := []domain.Article{{
		Title:   strings.Repeat("x", 200),
		Link:    "https://example.com/1",
		Keyword: "K",
	}}
	w := NewWriter(t.TempDir(), "fixed", nil)

	path, err := w.Export(arts)
	require.NoError(t, err)
	assert.Equal(t, "fixed.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	width, err := f.GetColWidth(SheetArticles, "A")
	require.NoError(t, err)
	assert.InDelta(t, 80, width, 0.01)

	width, err = f.GetColWidth(SheetSummary, "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("Keyword")+2), width, 0.01)
}

func TestSummarize_CountsRecentPerKeyword(t *testing.T) {
	got := Summarize(sampleArticles())
	assert.Equal(t, []KeywordSummary{
		{Keyword: "K", Total: 5, Recent: 2},
		{Keyword: "Other", Total: 1, Recent: 1},
	}, got)
}

func TestStamp_SharesOneTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := sampleArticles()
	out := Stamp(in, at)

	for _, a := range out {
		assert.Equal(t, at, a.ScrapedAt)
	}
	assert.True(t, in[0].ScrapedAt.IsZero())
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 7, ColumnWidth(5))
	assert.Equal(t, 80, ColumnWidth(78))
	assert.Equal(t, 80, ColumnWidth(500))
}
