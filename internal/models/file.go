package models

import (
	"time"

	"filedeck/internal/classify"
)

// File is a catalog entry for one uploaded file. It is created on upload,
// mutated only through tag updates, and destroyed on delete. Every record
// belongs to exactly one user, via both UserID and the denormalized Email.
type File struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	FileType    string `json:"fileType"`
	Description string `json:"description"`

	// FileURL is either an inline data: URL or an external object-storage
	// URL, depending on the blob backend.
	FileURL string `json:"fileUrl"`
	// StorageKey is set when the content lives in object storage, so
	// deletion can remove the object after the record.
	StorageKey string `json:"storageKey,omitempty"`

	TagTitle   string    `json:"tagTitle"`
	TagColor   string    `json:"tagColor"`
	UploadedAt time.Time `json:"uploadedAt"`

	UserID string `json:"userId"`
	Email  string `json:"email"`

	FileExtension string `json:"fileExtension"`
}

// Normalize fills deterministic defaults for optional fields so records
// written by older code paths stay presentable: description falls back to
// the file name, the tag to the catch-all, the extension is re-derived,
// and a negative size is clamped to zero.
func (f *File) Normalize() {
	if f.Description == "" {
		f.Description = f.FileName
	}
	if f.TagTitle == "" {
		f.TagTitle = classify.DefaultTag.Title
	}
	if f.TagColor == "" {
		f.TagColor = classify.DefaultTag.Color
	}
	if f.FileExtension == "" {
		f.FileExtension = classify.Ext(f.FileName)
	}
	if f.FileSize < 0 {
		f.FileSize = 0
	}
}
