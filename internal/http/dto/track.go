package dto

import (
	"encoding/json"

	"github.com/cesargomez89/shamzam/internal/domain"
)

// TrackRequest is the body of /add_track and /remove_track. Fields are kept
// raw until Validate so that missing and mistyped values can be told apart.
type TrackRequest struct {
	Artist json.RawMessage `json:"artist"`
	Title  json.RawMessage `json:"title"`

	fields int
}

// ParseTrackRequest decodes body, which must be a JSON object.
func ParseTrackRequest(body []byte) (*TrackRequest, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return &TrackRequest{Artist: obj["artist"], Title: obj["title"], fields: len(obj)}, nil
}

// Empty reports whether the object had no keys at all.
func (r *TrackRequest) Empty() bool {
	return r.fields == 0
}

// Validate returns the artist and title when both are non-empty strings.
func (r *TrackRequest) Validate() (artist, title string, errs []ValidationError) {
	artist, aerr := stringField("artist", r.Artist)
	title, terr := stringField("title", r.Title)
	if aerr != nil {
		errs = append(errs, *aerr)
	}
	if terr != nil {
		errs = append(errs, *terr)
	}
	if len(errs) > 0 {
		return "", "", errs
	}
	return artist, title, nil
}

// AddTrackResponse is returned by a successful /add_track.
type AddTrackResponse struct {
	Track   *domain.Track `json:"track"`
	Message string        `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
