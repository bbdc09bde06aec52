package models

import "time"

// SharedFolder is a read-only capability on a folder, valid until ExpiresAt.
type SharedFolder struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folderId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the share is unusable at now. A share stops working
// at the instant ExpiresAt is reached.
func (s *SharedFolder) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ShareLink is returned to the owner when a share is created.
type ShareLink struct {
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SharedFile is the public projection of a file inside a share. DownloadURL
// streams the file through the share itself.
type SharedFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Location    string    `json:"location"`
	DownloadURL string    `json:"downloadUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SharedFolderView is what an anonymous viewer of a share receives.
type SharedFolderView struct {
	FolderName string        `json:"folderName"`
	Files      []*SharedFile `json:"files"`
	ExpiresAt  time.Time     `json:"expiresAt"`
}
