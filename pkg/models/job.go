package models

// CollectStatus is the progress report of the backend collection job. The
// dashboard polls GET /api/collect/status until IsCollecting turns false; a
// non-empty LastError at that point means the run failed.
type CollectStatus struct {
	IsCollecting bool    `json:"is_collecting"`
	Message      *string `json:"message"`
	LastError    *string `json:"last_error"`
}

// ClipRequest is the body of POST /api/articles/{id}/clip.
type ClipRequest struct {
	Folder string `json:"folder"`
}
