// Package report writes harvested articles to a two-sheet spreadsheet.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
)

const (
	SheetArticles = "All_Articles"
	SheetSummary  = "Summary"

	// ScrapedAtLayout formats the scraped_at column.
	ScrapedAtLayout = "2006-01-02 15:04:05"

	maxColumnWidth = 80
)

var (
	articleHeader = []string{"title", "link", "publish_time", "query", "is_recent_24h", "scraped_at"}
	summaryHeader = []string{"Keyword", "Total_Articles", "Recent_24h"}
)

// ErrNoArticles is returned when there is nothing to export.
var ErrNoArticles = errors.New("no articles to export")

// ExportError wraps any failure that prevented the report from being written.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export report %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("export report: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// KeywordSummary counts articles for one keyword.
type KeywordSummary struct {
	Keyword string
	Total   int
	Recent  int
}

// Writer saves reports into a directory.
type Writer struct {
	dir      string
	fileName string
	now      func() time.Time
	log      logger.Logger
}

// NewWriter creates a Writer for dir. An empty fileName generates a timestamped name per export.
func NewWriter(dir, fileName string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writer{
		dir:      strings.TrimSpace(dir),
		fileName: strings.TrimSpace(fileName),
		now:      time.Now,
		log:      log,
	}
}

// Export stamps every article with one shared scrape time and writes the report.
// It returns the path of the written file.
func (w *Writer) Export(articles []domain.Article) (string, error) {
	return w.Write(Stamp(articles, w.now()))
}

// Stamp returns a copy of articles with ScrapedAt set to at.
func Stamp(articles []domain.Article, at time.Time) []domain.Article {
	out := make([]domain.Article, len(articles))
	for i, art := range articles {
		art.ScrapedAt = at
		out[i] = art
	}
	return out
}

// Write saves already stamped articles. An empty collection fails with ErrNoArticles and writes
// nothing.
func (w *Writer) Write(articles []domain.Article) (string, error) {
	if len(articles) == 0 {
		return "", &ExportError{Err: ErrNoArticles}
	}

	path := filepath.Join(w.dir, w.name(articles[0].ScrapedAt))
	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return "", &ExportError{Path: path, Err: fmt.Errorf("create output dir: %w", err)}
		}
	}

	summary := Summarize(articles)
	if err := writeWorkbook(path, articles, summary); err != nil {
		return "", &ExportError{Path: path, Err: err}
	}

	w.log.InfoObj("report saved", "report_saved", map[string]any{
		"path":     path,
		"articles": len(articles),
		"keywords": len(summary),
	})
	return path, nil
}

func (w *Writer) name(at time.Time) string {
	if w.fileName != "" {
		if filepath.Ext(w.fileName) == "" {
			return w.fileName + ".xlsx"
		}
		return w.fileName
	}
	if at.IsZero() {
		at = w.now()
	}
	return fmt.Sprintf("google_news_%s.xlsx", at.Format("20060102_150405"))
}

// Summarize counts articles per keyword in order of first appearance.
func Summarize(articles []domain.Article) []KeywordSummary {
	idx := make(map[string]int)
	var out []KeywordSummary
	for _, art := range articles {
		i, ok := idx[art.Keyword]
		if !ok {
			i = len(out)
			idx[art.Keyword] = i
			out = append(out, KeywordSummary{Keyword: art.Keyword})
		}
		out[i].Total++
		if art.IsRecent {
			out[i].Recent++
		}
	}
	return out
}

func writeWorkbook(path string, articles []domain.Article, summary []KeywordSummary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetArticles); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	articleRows := make([][]any, 0, len(articles))
	for _, art := range articles {
		articleRows = append(articleRows, []any{
			art.Title,
			art.Link,
			art.PublishTime,
			art.Keyword,
			art.IsRecent,
			art.ScrapedAt.Format(ScrapedAtLayout),
		})
	}
	if err := writeSheet(f, SheetArticles, articleHeader, articleRows); err != nil {
		return err
	}

	summaryRows := make([][]any, 0, len(summary))
	for _, s := range summary {
		summaryRows = append(summaryRows, []any{s.Keyword, s.Total, s.Recent})
	}
	if err := writeSheet(f, SheetSummary, summaryHeader, summaryRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writeSheet writes a header row and data rows, then sizes every column to its widest cell.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	widths := make([]int, len(header))

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
		widths[i] = runewidth.StringWidth(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(fmt.Sprint(v)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(ColumnWidth(w))); err != nil {
			return fmt.Errorf("size %s column %s: %w", sheet, col, err)
		}
	}
	return nil
}

// ColumnWidth pads the widest cell and caps the result.
func ColumnWidth(maxCell int) int {
	return min(maxCell+2, maxColumnWidth)
}
