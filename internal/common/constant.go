package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// DefaultMaxUploadSize is the upload ceiling used when none is configured (10 MiB).
const DefaultMaxUploadSize int64 = 10 << 20

// GeneralFolderKey replaces the folder segment of storage keys for unfiled uploads.
const GeneralFolderKey = "general"
