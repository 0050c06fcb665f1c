package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/config"
	"github.com/leshachaplin/eventrelay/internal/domain"
)

const (
	maxBodySize = 1 << 20
	ackBody     = "Event received"
)

func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	if h.mode == config.ModeBackground {
		h.eventBackground(w, r)
		return
	}
	h.eventSync(w, r)
}

func (h *Handler) eventSync(w http.ResponseWriter, r *http.Request) {
	in, err := h.inbound(w, r)
	if err != nil {
		h.error(err, w)
		return
	}

	res, err := h.events.Dispatch(r.Context(), in)
	if err != nil {
		h.error(err, w)
		return
	}

	if err := encodeJSONResponse(w, http.StatusOK, res); err != nil {
		h.logger.Error().Err(err).Str("request_id", in.RequestID).Msg("write response")
	}
}

// eventBackground acknowledges as soon as the body is read. Parsing, validation and
// dispatch happen on the worker pool and are only visible in logs.
func (h *Handler) eventBackground(w http.ResponseWriter, r *http.Request) {
	in, err := h.inbound(w, r)
	if err != nil {
		h.error(err, w)
		return
	}

	if err := h.events.Enqueue(r.Context(), in); err != nil {
		h.logger.Error().Err(err).Str("request_id", in.RequestID).Msg("event dropped")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ackBody))
}

func (h *Handler) inbound(w http.ResponseWriter, r *http.Request) (domain.Inbound, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Inbound{}, apierror.NewAPIError("Request body too large", http.StatusRequestEntityTooLarge)
		}
		return domain.Inbound{}, apierror.BadRequest("Could not read request body")
	}

	return domain.Inbound{
		RequestID:  requestIDFrom(r.Context()),
		Body:       data,
		Header:     r.Header.Clone(),
		RemoteAddr: r.RemoteAddr,
		ReceivedAt: time.Now(),
	}, nil
}
