// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultCatalogPort        = "5000"
	DefaultGatewayPort        = "8080"
	DefaultDBPath             = "shamzam.db"
	DefaultCatalogURL         = "http://127.0.0.1:5000"
	DefaultRecognitionURL     = "https://api.audd.io/"
	DefaultRecognitionTimeout = 30 * time.Second
	DefaultCatalogTimeout     = 10 * time.Second
	DefaultRecognitionRate    = 2.0
	DefaultMaxSampleBytes     = 10 << 20
	DefaultShutdownTimeout    = 5 * time.Second
	DefaultEnvFile            = ".env"
)

// Recognition providers
const (
	ProviderAudD = "audd"
	ProviderMock = "mock"
)

// Gateway responses
const (
	MsgTrackAdded          = "Track added to database"
	MsgTrackAlreadyExists  = "Track already in database"
	WarnTrackNotAdded      = "Track identified but could not be added"
	ErrMsgNotJSON          = "Request must be in JSON format"
	ErrMsgNoFilename       = "No filename provided"
	ErrMsgFileNotFound     = "File not found"
	ErrMsgSampleTooLarge   = "Audio sample too large"
	ErrMsgIdentifyFailed   = "Failed to identify track"
	ErrMsgRequestFailedFmt = "Request failed: %s"
)

// Catalog responses
const (
	MsgCatalogTrackAdded     = "Track added!"
	MsgCatalogTrackRemoved   = "Track %s by artist %s successfully removed."
	ErrMsgInvalidJSON        = "Invalid JSON"
	ErrMsgAddMissingFields   = "Missing title or artist"
	ErrMsgRemoveMissingField = "Missing 'artist' or 'title' field"
	ErrMsgFieldsNotStrings   = "'artist' and 'title' must be strings"
	ErrMsgTrackExists        = "Track already exists"
	ErrMsgTrackNotFound      = "Track not found"
	ErrMsgDatabase           = "Database error"
	ErrMsgRemoveFailed       = "Error removing track from database"
)

// HTTP
const (
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-Id"
	MimeTypeJSON        = "application/json"
	MaxRequestBodyBytes = 1 << 20
)
