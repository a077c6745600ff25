package domain

import "fmt"

// UnknownField is substituted for any artist or title the recognition
// provider leaves out of its payload.
const UnknownField = "Unknown"

// Track is a cataloged recording. (Artist, Title) is unique across live rows.
type Track struct {
	Title  string `json:"title" db:"title"`
	Artist string `json:"artist" db:"artist"`
	ID     int64  `json:"id" db:"id"`
}

func (t *Track) String() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

// RecognitionResult is what the provider told us about a sample. It is never
// persisted directly.
type RecognitionResult struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// NewRecognitionResult fills blank fields with UnknownField.
func NewRecognitionResult(artist, title string) RecognitionResult {
	if artist == "" {
		artist = UnknownField
	}
	if title == "" {
		title = UnknownField
	}
	return RecognitionResult{Artist: artist, Title: title}
}

// OutcomeStatus says how far an identification got once recognition succeeded.
type OutcomeStatus string

const (
	// OutcomeStored means the track was recognized and inserted.
	OutcomeStored OutcomeStatus = "stored"
	// OutcomeAlreadyCataloged means the catalog reported a duplicate; the
	// track is present but was not re-added.
	OutcomeAlreadyCataloged OutcomeStatus = "already_cataloged"
	// OutcomeNotStored is the partial failure: recognized, not persisted.
	OutcomeNotStored OutcomeStatus = "not_stored"
)

// Outcome is the result of a completed identification. Full failures
// (source missing, recognition failed) are returned as errors instead.
type Outcome struct {
	Track      *Track
	StoreErr   error
	ID         string
	Status     OutcomeStatus
	Recognized RecognitionResult
}

// Stored reports whether this identification inserted a new catalog row.
func (o *Outcome) Stored() bool {
	return o.Status == OutcomeStored
}
