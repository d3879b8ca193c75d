package models

import "time"

// Event subjects published on the file-events stream.
const (
	SubjectFileUploaded = "files.uploaded"
	SubjectUserDeleted  = "users.deleted"
)

// FileUploadedEvent is published after the relay stored a new record.
type FileUploadedEvent struct {
	FileID     string    `json:"file_id"`
	Collection string    `json:"collection"`
	Image      string    `json:"image"`
	Author     string    `json:"author"`
	FileSize   string    `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UserDeletedEvent asks the service to purge a user's files.
type UserDeletedEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
