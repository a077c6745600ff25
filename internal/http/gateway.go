package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/shamzam/internal/audiofile"
	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/http/dto"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// Identifier runs one identification.
type Identifier interface {
	Identify(ctx context.Context, filename string) (*domain.Outcome, error)
}

// SampleOpener reads a sample for /probe.
type SampleOpener interface {
	Open(name string) (*audiofile.Sample, error)
}

type GatewayHandler struct {
	Identifier Identifier
	Samples    SampleOpener
	Logger     *logger.Logger
}

func NewGatewayHandler(id Identifier, samples SampleOpener, log *logger.Logger) *GatewayHandler {
	return &GatewayHandler{Identifier: id, Samples: samples, Logger: log.WithComponent("gateway_http")}
}

func (h *GatewayHandler) RegisterRoutes(r chi.Router) {
	r.Post("/identify", h.Identify)
	r.Get("/probe", h.Probe)
	r.Get("/healthz", healthHandler(nil))
}

// NewGatewayRouter wires the gateway routes plus /metrics.
func NewGatewayRouter(h *GatewayHandler, m *metrics.Metrics) http.Handler {
	r := newRouter(h.Logger, m)
	h.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

func (h *GatewayHandler) Identify(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}
	req, ok, err := dto.ParseIdentifyRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNotJSON)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNoFilename)
		return
	}

	outcome, err := h.Identifier.Identify(r.Context(), req.Filename)
	if err != nil {
		status, msg := identifyError(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("Identification failed", "file", req.Filename, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	switch outcome.Status {
	case domain.OutcomeStored:
		writeJSON(w, http.StatusOK, dto.NewIdentifyResponse(outcome, constants.MsgTrackAdded, ""))
	case domain.OutcomeAlreadyCataloged:
		writeJSON(w, http.StatusOK, dto.NewIdentifyResponse(outcome, constants.MsgTrackAlreadyExists, ""))
	default:
		h.Logger.Warn("Returning partial identification", "identification_id", outcome.ID, "error", outcome.StoreErr)
		writeJSON(w, http.StatusOK, dto.NewIdentifyResponse(outcome, "", constants.WarnTrackNotAdded))
	}
}

func (h *GatewayHandler) Probe(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if name == "" {
		writeError(w, http.StatusBadRequest, constants.ErrMsgNoFilename)
		return
	}

	sample, err := h.Samples.Open(name)
	if err != nil {
		status, msg := identifyError(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, audiofile.Probe(sample))
}

// identifyError maps a full identification failure onto a status and a
// caller-safe message.
func identifyError(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound, constants.ErrMsgFileNotFound
	case domain.KindMalformedRequest:
		if reason := domain.ReasonOf(err); reason != "" {
			return http.StatusBadRequest, reason
		}
		return http.StatusBadRequest, constants.ErrMsgNoFilename
	case domain.KindUpstreamFailure:
		if reason := domain.ReasonOf(err); reason != "" {
			return http.StatusInternalServerError, fmt.Sprintf(constants.ErrMsgRequestFailedFmt, reason)
		}
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusInternalServerError, fmt.Sprintf(constants.ErrMsgRequestFailedFmt, "request canceled")
	}
	return http.StatusInternalServerError, constants.ErrMsgIdentifyFailed
}
