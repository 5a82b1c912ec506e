package collector

import (
	"time"

	"audiofetch/pkg/storage"
)

// Status is the outcome of processing one query
type Status string

const (
	// StatusCompleted means the page was fetched and candidates were processed,
	// even if every download failed or was skipped
	StatusCompleted Status = "completed"
	// StatusExtractionEmpty means the page had no usable candidate links
	StatusExtractionEmpty Status = "extraction_empty"
	// StatusQueryFailed means the page could not be fetched or parsed
	StatusQueryFailed Status = "query_failed"
	// StatusCancelled means the run was interrupted while on this query
	StatusCancelled Status = "cancelled"
)

// DownloadedFile is a candidate written to disk
type DownloadedFile struct {
	Key    storage.Key
	URL    string
	Path   string
	Size   int64
	SHA256 string
}

// DownloadFailure is a candidate that could not be downloaded or saved
type DownloadFailure struct {
	URL string
	Key storage.Key
	Err error
}

// QueryResult reports everything that happened for one query
type QueryResult struct {
	Category  string
	Query     string
	TargetURL string
	Status    Status
	// Rule names the extraction rule that produced the candidates
	Rule       string
	Candidates int
	Downloaded []DownloadedFile
	// Planned lists the keys a dry run would have written
	Planned  []storage.Key
	Skipped  int
	Failures []DownloadFailure
	// Err is set for StatusQueryFailed
	Err      error
	Duration time.Duration
}

// Count returns the number of files written for the query
func (r *QueryResult) Count() int {
	return len(r.Downloaded)
}

// RunReport aggregates the results of a run over a catalog
type RunReport struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	DryRun   bool
	Results  []*QueryResult
}

// Downloaded returns the total number of files written
func (r *RunReport) Downloaded() int {
	n := 0
	for _, res := range r.Results {
		n += res.Count()
	}
	return n
}

// FailedDownloads returns the number of candidates that failed
func (r *RunReport) FailedDownloads() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Failures)
	}
	return n
}

// CountStatus returns how many queries ended with status s
func (r *RunReport) CountStatus(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// ByCategory returns the number of files written per category
func (r *RunReport) ByCategory() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		counts[res.Category] += res.Count()
	}
	return counts
}

// Duration returns the wall time of the run
func (r *RunReport) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
