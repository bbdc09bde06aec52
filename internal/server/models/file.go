package models

import "time"

// File describes an uploaded blob. Location is the opaque handle returned by
// the blob store (a filesystem path or an object URL).
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Location string `json:"location"`
	UserID   string `json:"userId"`
	// FolderID is nil for unfiled uploads.
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *File) OwnerID() string { return f.UserID }

// InFolder reports whether the file belongs to folderID.
func (f *File) InFolder(folderID string) bool {
	return f.FolderID != nil && *f.FolderID == folderID
}
