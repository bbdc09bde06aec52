// Package models defines server-side records persisted by the metadata store.
package models

import "time"

// Folder is a flat, single-owner container of files.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	// Files is filled by reads that include folder contents.
	Files []*File `json:"files,omitempty"`
}

func (f *Folder) OwnerID() string { return f.UserID }
