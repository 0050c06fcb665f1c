package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

func (i *IntegrationTestSuite) client(url string) *Client {
	return NewClient(url, &http.Client{Timeout: 10 * time.Second})
}

func (i *IntegrationTestSuite) TestSync_SendEvent() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	eventID := uuid.NewString()
	res, err := i.client(i.syncAddr).do(ctx, http.MethodPost, "/v1/event", eventPayload(eventID))
	i.Require().NoError(err)

	i.Equal(http.StatusOK, res.status)
	i.Equal("*", res.header.Get("Access-Control-Allow-Origin"))
	i.JSONEq(
		`{"Meta":"Processed successfully","Google Analytics":"Processed successfully","Google Ads":"Processed successfully"}`,
		string(res.body),
	)
	i.True(i.destinations.received("meta", eventID))
	i.True(i.destinations.received("analytics", eventID))
	i.True(i.destinations.received("ads", eventID))
}

func (i *IntegrationTestSuite) TestSync_RootPath() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	payload := eventPayload(uuid.NewString())
	delete(payload["meta"].(map[string]any), "meta_pixel_id")

	res, err := i.client(i.syncAddr).do(ctx, http.MethodPost, "/", payload)
	i.Require().NoError(err)

	i.Equal(http.StatusOK, res.status)
	i.JSONEq(
		`{"Meta":"Event skipped","Google Analytics":"Processed successfully","Google Ads":"Processed successfully"}`,
		string(res.body),
	)
}

func (i *IntegrationTestSuite) TestSync_Rejected() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	payload := eventPayload(uuid.NewString())
	delete(payload["data"].(map[string]any), "event_url")

	res, err := i.client(i.syncAddr).do(ctx, http.MethodPost, "/v1/event", payload)
	i.Require().NoError(err)

	i.Equal(http.StatusBadRequest, res.status)
	i.Contains(string(res.body), "Event URL is missing")
}

func (i *IntegrationTestSuite) TestPreflight() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	for _, addr := range []string{i.syncAddr, i.backgroundAddr} {
		res, err := i.client(addr).do(ctx, http.MethodOptions, "/v1/event", nil)
		i.Require().NoError(err)
		i.Equal(http.StatusNoContent, res.status)
		i.Equal("POST, OPTIONS", res.header.Get("Access-Control-Allow-Methods"))
	}
}

func (i *IntegrationTestSuite) TestBackground_SendEvent() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	eventID := uuid.NewString()
	res, err := i.client(i.backgroundAddr).do(ctx, http.MethodPost, "/v1/event", eventPayload(eventID))
	i.Require().NoError(err)

	i.Equal(http.StatusOK, res.status)
	i.Equal("Event received", string(res.body))
	i.Eventually(func() bool {
		return i.destinations.received("meta", eventID) &&
			i.destinations.received("analytics", eventID) &&
			i.destinations.received("ads", eventID)
	}, 5*time.Second, 20*time.Millisecond)
}

func (i *IntegrationTestSuite) TestBackground_InvalidEventAcknowledged() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	res, err := i.client(i.backgroundAddr).do(ctx, http.MethodPost, "/v1/event", map[string]any{"data": map[string]any{}})
	i.Require().NoError(err)

	i.Equal(http.StatusOK, res.status)
	i.Equal("Event received", string(res.body))
}
