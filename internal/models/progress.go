package models

// ProgressUpdate is broadcast over the websocket hub while workers
// download, export or update comics.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"` // "downloader", "export", "updater"
	ItemID   int64   `json:"item_id,omitempty"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"` // e.g. "in_progress", "completed", "failed"
	Speed    string  `json:"speed,omitempty"`
	Done     bool    `json:"done"`
}
