package domain

import "time"

// MediaItem is an uploaded file in the media library.
type MediaItem struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	ObjectName  string
	URL         string
	UploadedBy  string
	CreatedAt   time.Time
}

// UploadStatus tracks a queued file: pending, uploading, then success or error.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	Locale    string
	ProductID string
	RemoteIP  string
	CreatedAt time.Time
}
