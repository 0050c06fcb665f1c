package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/config"
	"github.com/leshachaplin/eventrelay/internal/service"
)

type Handler struct {
	events service.Event
	mode   config.DispatchMode
	logger zerolog.Logger
}

func NewHandler(events service.Event, mode config.DispatchMode, logger zerolog.Logger) *Handler {
	return &Handler{
		events: events,
		mode:   mode,
		logger: logger,
	}
}

func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.error(apierror.NewAPIError("Wrong request method", http.StatusMethodNotAllowed), w)
}

func (h *Handler) error(err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var apiErr apierror.Error
	if !errors.As(err, &apiErr) {
		h.logger.Error().Stack().Err(err).Msg("unexpected error")
		apiErr = apierror.NewAPIError(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	w.WriteHeader(apiErr.StatusCode())
	if err = json.NewEncoder(w).Encode(apiErr); err != nil {
		h.logger.Error().Err(err).Msg("write error response")
	}
}
