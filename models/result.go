package models

// Status classifies how a best-effort operation ended.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// SyncResult is the outcome of an archive index synchronization.
type SyncResult struct {
	Status   Status
	Known    int // articles known before the sync
	Listed   int // entries on the remote listing
	Inserted []Article
	Fetches  []FetchResult // article downloads triggered by offline mode
	Err      error
}

// FetchResult is the outcome of downloading one article for offline reading.
type FetchResult struct {
	Number       int
	Status       Status
	ImagesTotal  int
	ImagesStored int
	ImageErrors  []error
	Err          error
}

// Ok reports whether the article document itself was stored.
func (r FetchResult) Ok() bool {
	return r.Status != StatusFailed
}
