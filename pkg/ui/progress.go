package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"audiofetch/pkg/collector"
)

// Tracker prints one line per downloaded file and per finished query. It
// implements collector.Observer.
type Tracker struct {
	printer *Printer
	total   int

	mu       sync.Mutex
	finished int
}

// NewTracker creates a tracker for a run of totalQueries queries
func NewTracker(printer *Printer, totalQueries int) *Tracker {
	return &Tracker{printer: printer, total: totalQueries}
}

// FileDownloaded prints the saved file
func (t *Tracker) FileDownloaded(category string, file collector.DownloadedFile) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.printer.Dim("  + %s/%s (%s)", category, file.Key.Filename, FormatBytes(file.Size))
}

// QueryFinished prints the query outcome with a progress counter
func (t *Tracker) QueryFinished(res *collector.QueryResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finished++
	prefix := fmt.Sprintf("[%d/%d] %s: %s", t.finished, t.total, res.Category, res.Query)

	switch res.Status {
	case collector.StatusCompleted:
		msg := fmt.Sprintf("%s -> %d downloaded, %d skipped of %d candidates",
			prefix, res.Count(), res.Skipped, res.Candidates)
		if len(res.Planned) > 0 {
			msg = fmt.Sprintf("%s -> would download %d of %d candidates", prefix, len(res.Planned), res.Candidates)
		}
		if len(res.Failures) > 0 {
			t.printer.Warning("%s, %d failed", msg, len(res.Failures))
			return
		}
		t.printer.Success("%s", msg)
		for _, key := range res.Planned {
			t.printer.Dim("  ~ %s", key)
		}
	case collector.StatusExtractionEmpty:
		t.printer.Dim("%s -> no candidates", prefix)
	case collector.StatusQueryFailed:
		t.printer.Error("%s -> failed: %v", prefix, res.Err)
	case collector.StatusCancelled:
		t.printer.Warning("%s -> cancelled", prefix)
	}
}

// Summary renders the end-of-run report
func Summary(report *collector.RunReport) string {
	var lines []string

	counts := report.ByCategory()
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("%-12s %d files", c, counts[c]))
	}

	lines = append(lines,
		fmt.Sprintf("%-12s %d", "downloaded", report.Downloaded()),
		fmt.Sprintf("%-12s %d", "failed", report.FailedDownloads()),
		fmt.Sprintf("%-12s %d", "query errors", report.CountStatus(collector.StatusQueryFailed)),
		fmt.Sprintf("%-12s %d", "empty", report.CountStatus(collector.StatusExtractionEmpty)),
	)
	if n := report.CountStatus(collector.StatusCancelled); n > 0 {
		lines = append(lines, fmt.Sprintf("%-12s %d", "cancelled", n))
	}
	lines = append(lines, fmt.Sprintf("%-12s %s", "elapsed", report.Duration().Round(time.Millisecond)))

	return strings.Join(lines, "\n")
}

// PrintSummary prints the summary block and the final status line
func (p *Printer) PrintSummary(report *collector.RunReport) {
	body := Summary(report)
	if p.color {
		body = summaryStyle.Render(body)
	}
	fmt.Fprintln(p.out, body)

	if report.DryRun {
		fmt.Fprintln(p.out, p.paint(successStyle, "Dry run finished."))
		return
	}
	fmt.Fprintln(p.out, p.paint(successStyle, fmt.Sprintf("Finished. %d new files.", report.Downloaded())))
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
