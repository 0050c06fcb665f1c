package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/config"
	"github.com/leshachaplin/eventrelay/internal/destination"
	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/service"
	"github.com/leshachaplin/eventrelay/internal/worker"
)

type fakeEvents struct {
	mu         sync.Mutex
	dispatched []domain.Inbound
	enqueued   []domain.Inbound
	results    service.Results
	err        error
}

func (f *fakeEvents) Dispatch(ctx context.Context, in domain.Inbound) (service.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, in)
	return f.results, f.err
}

func (f *fakeEvents) Enqueue(ctx context.Context, in domain.Inbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, in)
	return f.err
}

func newRouter(events service.Event, mode config.DispatchMode) http.Handler {
	h := NewHandler(events, mode, zerolog.Nop())
	return New(h, 10*time.Second).Router()
}

func serve(router http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, referer", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestHandler_Preflight(t *testing.T) {
	router := newRouter(&fakeEvents{}, config.ModeSync)

	for _, path := range []string{"/", "/v1/event", "/track/purchase"} {
		w := serve(router, http.MethodOptions, path, "", nil)
		require.Equal(t, http.StatusNoContent, w.Code, path)
		require.Empty(t, w.Body.String())
		assertCORS(t, w)
	}
}

func TestHandler_WrongMethod(t *testing.T) {
	router := newRouter(&fakeEvents{}, config.ModeSync)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := serve(router, method, "/", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		require.Contains(t, w.Body.String(), "Wrong request method")
		assertCORS(t, w)

		w = serve(router, method, "/track/purchase", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		require.Contains(t, w.Body.String(), "Wrong request method")
		assertCORS(t, w)
	}
}

func TestHandler_Ready(t *testing.T) {
	w := serve(newRouter(&fakeEvents{}, config.ModeSync), http.MethodGet, "/_/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHandler_EventSync(t *testing.T) {
	events := &fakeEvents{results: service.Results{
		Meta:      destination.Skipped(),
		Analytics: destination.Success(),
		Ads:       destination.TransportFailure(),
	}}
	router := newRouter(events, config.ModeSync)

	w := serve(router, http.MethodPost, "/v1/event", `{"data":{}}`, map[string]string{
		"User-Agent":      "Mozilla/5.0",
		"X-Forwarded-For": "203.0.113.9",
		"X-Request-ID":    "req-42",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	require.JSONEq(t,
		`{"Meta":"Event skipped","Google Analytics":"Processed successfully","Google Ads":"Request failed"}`,
		w.Body.String())
	assertCORS(t, w)

	require.Len(t, events.dispatched, 1)
	in := events.dispatched[0]
	require.Equal(t, "req-42", in.RequestID)
	require.Equal(t, `{"data":{}}`, string(in.Body))
	require.Equal(t, "Mozilla/5.0", in.Header.Get("User-Agent"))
	require.Equal(t, "203.0.113.9", in.Header.Get("X-Forwarded-For"))
	require.False(t, in.ReceivedAt.IsZero())
	require.Empty(t, events.enqueued)
}

func TestHandler_EventSync_AnyPath(t *testing.T) {
	events := &fakeEvents{}
	router := newRouter(events, config.ModeSync)

	w := serve(router, http.MethodPost, "/track/purchase", `{"data":{}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)
	require.Len(t, events.dispatched, 1)
}

func TestHandler_EventSync_Errors(t *testing.T) {
	cases := map[string]struct {
		err     error
		code    int
		message string
	}{
		"validation": {
			err:     apierror.MissingField("Event ID is missing", "eventId"),
			code:    http.StatusBadRequest,
			message: "Event ID is missing",
		},
		"invalid json": {
			err:     apierror.BadRequest("Invalid JSON"),
			code:    http.StatusBadRequest,
			message: "Invalid JSON",
		},
		"unexpected": {
			err:     errors.New("boom"),
			code:    http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := newRouter(&fakeEvents{err: tc.err}, config.ModeSync)

			w := serve(router, http.MethodPost, "/", `{}`, nil)
			require.Equal(t, tc.code, w.Code)

			var body apierror.Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tc.message, body.Message)
			require.Equal(t, tc.code, body.HTTP.Code)
			assertCORS(t, w)
		})
	}
}

func TestHandler_EventSync_BodyTooLarge(t *testing.T) {
	events := &fakeEvents{}
	router := newRouter(events, config.ModeSync)

	w := serve(router, http.MethodPost, "/", strings.Repeat("x", maxBodySize+1), nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Empty(t, events.dispatched)
}

func TestHandler_EventBackground(t *testing.T) {
	events := &fakeEvents{}
	router := newRouter(events, config.ModeBackground)

	w := serve(router, http.MethodPost, "/", `not even json`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, ackBody, w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assertCORS(t, w)

	require.Len(t, events.enqueued, 1)
	require.Equal(t, "not even json", string(events.enqueued[0].Body))
	require.Equal(t, w.Header().Get("X-Request-ID"), events.enqueued[0].RequestID)
	require.Empty(t, events.dispatched)
}

func TestHandler_EventBackground_EnqueueFailureStillAcknowledged(t *testing.T) {
	router := newRouter(&fakeEvents{err: errors.New("worker pool stopped")}, config.ModeBackground)

	w := serve(router, http.MethodPost, "/v1/event", `{}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, ackBody, w.Body.String())
}

type blockingSender struct {
	release chan struct{}
}

func (b blockingSender) Send(ctx context.Context, req destination.Request) destination.Result {
	<-b.release
	return destination.Success()
}

func TestHandler_EventBackground_AcksWhileQueueIsFull(t *testing.T) {
	release := make(chan struct{})
	pool := worker.New(context.Background(), worker.Config{NumWorkers: 1, QueueSize: 1}, zerolog.Nop())
	cfg := destination.Config{Meta: destination.MetaConfig{BaseURL: "https://meta.test", AccessToken: "meta-token"}}
	svc := service.New(cfg, blockingSender{release: release}, pool, zerolog.Nop())
	defer pool.GracefulStop()
	defer close(release)

	router := newRouter(svc, config.ModeBackground)
	body := `{"data":{"event_id":"1","event_url":"https://shop.test","user_id":"u","meta_event":"Purchase"},"meta":{"meta_pixel_id":"9"}}`

	// the worker holds the first event and the queue the second; the rest are dropped
	for i := 0; i < 4; i++ {
		start := time.Now()
		w := serve(router, http.MethodPost, "/v1/event", body, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, ackBody, w.Body.String())
		require.Less(t, time.Since(start), time.Second)
	}
}
