// Package httpapp holds the HTTP surfaces of the catalog and the recognition
// gateway.
package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/http/dto"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// CatalogAPI is the catalog business logic the handler drives.
type CatalogAPI interface {
	List(ctx context.Context) ([]*domain.Track, error)
	Create(ctx context.Context, artist, title string) (*domain.Track, error)
	Delete(ctx context.Context, artist, title string) (*domain.Track, error)
}

type CatalogHandler struct {
	Service CatalogAPI
	Ready   ReadyFunc
	Logger  *logger.Logger
}

func NewCatalogHandler(svc CatalogAPI, ready ReadyFunc, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{Service: svc, Ready: ready, Logger: log.WithComponent("catalog_http")}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tracks", h.ListTracks)
	r.Post("/add_track", h.AddTrack)
	r.Post("/remove_track", h.RemoveTrack)
	r.Get("/healthz", healthHandler(h.Ready))
}

// NewCatalogRouter wires the catalog routes plus /metrics.
func NewCatalogRouter(h *CatalogHandler, m *metrics.Metrics) http.Handler {
	r := newRouter(h.Logger, m)
	h.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

func (h *CatalogHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, constants.ErrMsgDatabase)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (h *CatalogHandler) AddTrack(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}
	req, err := dto.ParseTrackRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}

	artist, title, verrs := req.Validate()
	if len(verrs) > 0 {
		h.Logger.Debug("Rejected add_track", "errors", dto.ToResponse(verrs))
		writeError(w, http.StatusBadRequest, fieldMessage(verrs, constants.ErrMsgAddMissingFields))
		return
	}

	track, err := h.Service.Create(r.Context(), artist, title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusConflict, constants.ErrMsgTrackExists)
		case errors.Is(err, domain.ErrMissingField):
			writeError(w, http.StatusBadRequest, constants.ErrMsgAddMissingFields)
		default:
			writeError(w, http.StatusInternalServerError, constants.ErrMsgDatabase)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.AddTrackResponse{Message: constants.MsgCatalogTrackAdded, Track: track})
}

func (h *CatalogHandler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ErrMsgInvalidJSON)
		return
	}
	req, err := dto.ParseTrackRequest(body)
	if err != nil || req.Empty() {
		writeError(w, http.StatusBadRequest, constants.ErrMsgInvalidJSON)
		return
	}

	artist, title, verrs := req.Validate()
	if len(verrs) > 0 {
		h.Logger.Debug("Rejected remove_track", "errors", dto.ToResponse(verrs))
		writeError(w, http.StatusBadRequest, fieldMessage(verrs, constants.ErrMsgRemoveMissingField))
		return
	}

	track, err := h.Service.Delete(r.Context(), artist, title)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			writeError(w, http.StatusNotFound, constants.ErrMsgTrackNotFound)
		case domain.KindMissingField:
			writeError(w, http.StatusBadRequest, constants.ErrMsgRemoveMissingField)
		default:
			writeError(w, http.StatusInternalServerError, constants.ErrMsgRemoveFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: fmt.Sprintf(constants.MsgCatalogTrackRemoved, track.Title, track.Artist),
	})
}

func fieldMessage(errs []dto.ValidationError, missing string) string {
	if dto.KindOf(errs) == domain.KindMissingField {
		return missing
	}
	return constants.ErrMsgFieldsNotStrings
}
