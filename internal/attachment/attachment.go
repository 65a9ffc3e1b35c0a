package attachment

import (
	"context"
	"io"
	"time"

	attachmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/attachment"
)

// DownloadURLTTL bounds the lifetime of presigned download links.
const DownloadURLTTL = 15 * time.Minute

type Attachment struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"task"`
	File           string    `json:"file"`
	Filename       string    `json:"filename"`
	ContentType    string    `json:"content_type"`
	Size           int64     `json:"size"`
	URL            string    `json:"url,omitempty"`
	UploadedByID   int64     `json:"uploaded_by"`
	UploadedByName string    `json:"uploaded_by_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Storage is the object store holding attachment bodies.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

func FromDataModel(row *attachmentDatamodel.Attachment) *Attachment {
	a := &Attachment{
		ID:           row.ID,
		TaskID:       row.TaskID,
		File:         row.File,
		Filename:     row.Filename,
		ContentType:  row.ContentType,
		Size:         row.Size,
		UploadedByID: row.UploadedByID,
		CreatedAt:    row.CreatedAt,
	}
	if row.UploadedBy != nil {
		a.UploadedByName = row.UploadedBy.Username
	}
	return a
}
