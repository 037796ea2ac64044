package models

// Receipt acknowledges a persisted snapshot.
type Receipt struct {
	StoredAt   string `json:"storedAt"`
	CapturedAt int64  `json:"capturedAt"`
}

// PurgeResult counts the outcome of a best-effort delete of every object under
// one address.
type PurgeResult struct {
	Listed  int `json:"listed"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}
