package models

import (
	"time"
)

// Store collections used by the service.
const (
	FilesCollection = "files"
	UsersCollection = "users"
)

// FileRecord is one uploaded image as stored in the files collection.
// Author holds the sanitized username of the uploader and never changes.
type FileRecord struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	Author         string `json:"author"`
	Image          string `json:"image"`
	FileSize       string `json:"fileSize"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
}

// createdLayouts are the timestamp formats the store emits.
var createdLayouts = []string{
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05.999Z07:00",
	time.RFC3339Nano,
}

// CreatedAt parses Created; it returns the zero time when it cannot.
func (f FileRecord) CreatedAt() time.Time {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, f.Created); err == nil {
			return t
		}
	}
	return time.Time{}
}
