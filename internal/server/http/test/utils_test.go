package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	pixelID       = "123"
	measurementID = "G-TEST"
	customerID    = "1234567890"
)

// fakeDestinations records every body it receives, keyed by destination.
type fakeDestinations struct {
	mu     sync.Mutex
	bodies map[string][]string
}

func newFakeDestinations() *fakeDestinations {
	return &fakeDestinations{bodies: make(map[string][]string)}
}

func (f *fakeDestinations) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var name string
	switch {
	case r.URL.Path == "/"+pixelID+"/events":
		name = "meta"
	case r.URL.Path == "/mp/collect":
		name = "analytics"
	case strings.HasPrefix(r.URL.Path, "/customers/"+customerID):
		name = "ads"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	f.bodies[name] = append(f.bodies[name], string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

// received reports whether name got a body mentioning eventID.
func (f *fakeDestinations) received(name, eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bodies[name] {
		if strings.Contains(b, eventID) {
			return true
		}
	}
	return false
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	url  string
	http HTTPClient
}

func NewClient(url string, httpClient HTTPClient) *Client {
	return &Client{
		url:  url,
		http: httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("User-Agent", "integration-test")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	return req, nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return response{}, fmt.Errorf("could not create request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("could not send request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return response{}, fmt.Errorf("could not read response: %w", err)
	}
	return response{status: res.StatusCode, header: res.Header, body: data}, nil
}

func eventPayload(eventID string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"event_id":              eventID,
			"event_url":             "https://shop.test/checkout?utm_source=newsletter&utm_campaign=spring",
			"user_id":               "user-" + eventID,
			"meta_event":            "Purchase",
			"ga_event":              "purchase",
			"gads_conversion_label": "987",
			"cookie_fbp":            "fb.1.1.1",
			"cookie_gclid":          "gclid-" + eventID,
			"user_data": map[string]any{
				"name":  "maria dos santos",
				"email": "maria@example.com",
				"phone": "+5511988887777",
			},
		},
		"meta": map[string]any{
			"meta_pixel_id":     pixelID,
			"ga_measurement_id": measurementID,
		},
	}
}
