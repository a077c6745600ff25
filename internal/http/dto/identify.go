package dto

import (
	"encoding/json"

	"github.com/cesargomez89/shamzam/internal/domain"
)

// IdentifyRequest is the body of POST /identify.
type IdentifyRequest struct {
	Filename string `json:"filename"`
}

// ParseIdentifyRequest decodes body. ok is false when the filename is
// absent, empty or not a string.
func ParseIdentifyRequest(body []byte) (req *IdentifyRequest, ok bool, err error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, false, err
	}
	raw, present := obj["filename"]
	if !present {
		return &IdentifyRequest{}, false, nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return &IdentifyRequest{}, false, nil
	}
	return &IdentifyRequest{Filename: name}, true, nil
}

// IdentifyResponse carries the recognized track plus either a message or,
// on a partial failure, a warning.
type IdentifyResponse struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Stored  bool   `json:"stored"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// NewIdentifyResponse builds the body for a completed identification.
func NewIdentifyResponse(o *domain.Outcome, message, warning string) IdentifyResponse {
	return IdentifyResponse{
		Artist:  o.Recognized.Artist,
		Title:   o.Recognized.Title,
		Stored:  o.Stored(),
		Message: message,
		Warning: warning,
	}
}
