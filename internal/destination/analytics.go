package destination

import (
	"fmt"
	"net/url"

	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/normalize"
)

const AnalyticsName = "Google Analytics"

type AnalyticsPayload struct {
	ClientID string           `json:"client_id"`
	Events   []AnalyticsEvent `json:"events"`
}

type AnalyticsEvent struct {
	Name   string          `json:"name"`
	Params AnalyticsParams `json:"params"`
}

type AnalyticsParams struct {
	PageLocation       string `json:"page_location"`
	PageReferrer       string `json:"page_referrer"`
	EventID            string `json:"event_id"`
	EngagementTimeMsec int    `json:"engagement_time_msec"`
	normalize.UTMs
}

func NewAnalyticsPayload(rec domain.Record, eventName string) AnalyticsPayload {
	return AnalyticsPayload{
		ClientID: rec.UserID,
		Events: []AnalyticsEvent{{
			Name: eventName,
			Params: AnalyticsParams{
				PageLocation:       rec.EventURL,
				PageReferrer:       rec.EventURL,
				EventID:            rec.EventID,
				EngagementTimeMsec: 1,
				UTMs:               rec.UTMs,
			},
		}},
	}
}

// NewAnalyticsRequest targets the GA4 Measurement Protocol collect endpoint.
func NewAnalyticsRequest(cfg AnalyticsConfig, measurementID string, payload AnalyticsPayload) Request {
	q := url.Values{}
	q.Set("measurement_id", measurementID)
	q.Set("api_secret", cfg.APISecret)

	return Request{
		Destination: AnalyticsName,
		URL:         fmt.Sprintf("%s/mp/collect?%s", cfg.BaseURL, q.Encode()),
		Body:        payload,
	}
}
