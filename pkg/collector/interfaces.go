package collector

import (
	"context"
	"io"

	"audiofetch/pkg/history"
	"audiofetch/pkg/storage"
)

// Fetcher retrieves pages and files from the site
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)
	Download(ctx context.Context, fileURL string) ([]byte, error)
}

// Store persists downloaded files
type Store interface {
	Exists(key storage.Key) bool
	Save(key storage.Key, r io.Reader) (storage.SavedFile, error)
}

// Ledger records runs and the files they wrote
type Ledger interface {
	StartRun(ctx context.Context) (string, error)
	FinishRun(ctx context.Context, id string, queries, downloaded, failed int) error
	RecordDownload(ctx context.Context, d history.Download) error
	HasChecksum(ctx context.Context, sum string) (bool, error)
}

// Observer is notified as a run progresses. Calls may come from several
// workers at once.
type Observer interface {
	FileDownloaded(category string, file DownloadedFile)
	QueryFinished(result *QueryResult)
}
