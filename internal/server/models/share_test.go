package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSharedFolder_Expired(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &SharedFolder{ExpiresAt: exp}

	assert.False(t, s.Expired(exp.Add(-time.Second)))
	assert.True(t, s.Expired(exp))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestFile_InFolder(t *testing.T) {
	id := "f1"
	assert.True(t, (&File{FolderID: &id}).InFolder("f1"))
	assert.False(t, (&File{FolderID: &id}).InFolder("f2"))
	assert.False(t, (&File{}).InFolder("f1"))
}
