package destination

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/normalize"
)

const MetaName = "Meta"

type MetaPayload struct {
	Data []MetaEvent `json:"data"`
}

type MetaEvent struct {
	EventName      string         `json:"event_name"`
	EventID        string         `json:"event_id"`
	EventTime      int64          `json:"event_time"`
	ActionSource   string         `json:"action_source"`
	EventSourceURL string         `json:"event_source_url"`
	UserData       MetaUserData   `json:"user_data"`
	CustomData     MetaCustomData `json:"custom_data"`
}

// MetaUserData fields are already hashed where Meta expects hashes.
type MetaUserData struct {
	FirstName       *string `json:"fn"`
	LastName        *string `json:"ln"`
	Email           *string `json:"em"`
	Phone           *string `json:"ph"`
	Fbp             *string `json:"fbp,omitempty"`
	Fbc             *string `json:"fbc,omitempty"`
	ClientUserAgent *string `json:"client_user_agent"`
	ClientIPAddress *string `json:"client_ip_address"`
}

type MetaCustomData struct {
	PageReferrer string `json:"page_referrer"`
	normalize.UTMs
}

func NewMetaPayload(rec domain.Record, eventName string) MetaPayload {
	return MetaPayload{
		Data: []MetaEvent{{
			EventName:      eventName,
			EventID:        rec.EventID,
			EventTime:      rec.Unix(),
			ActionSource:   "website",
			EventSourceURL: rec.EventURL,
			UserData: MetaUserData{
				FirstName:       rec.HashedFirstName,
				LastName:        rec.HashedLastName,
				Email:           rec.HashedEmail,
				Phone:           rec.HashedPhone,
				Fbp:             rec.CookieFbp,
				Fbc:             rec.CookieFbc,
				ClientUserAgent: rec.UserAgent,
				ClientIPAddress: rec.ClientIP,
			},
			CustomData: MetaCustomData{
				PageReferrer: rec.EventURL,
				UTMs:         rec.UTMs,
			},
		}},
	}
}

// NewMetaRequest targets the Conversions API of one pixel. testCode routes the event to
// the Events Manager test tab and is omitted when empty.
func NewMetaRequest(cfg MetaConfig, pixelID, testCode string, payload MetaPayload) Request {
	q := url.Values{}
	q.Set("access_token", cfg.AccessToken)
	if testCode != "" {
		q.Set("test_event_code", testCode)
	}

	return Request{
		Destination:  MetaName,
		URL:          fmt.Sprintf("%s/%s/events?%s", cfg.BaseURL, url.PathEscape(pixelID), q.Encode()),
		Body:         payload,
		ErrorMessage: metaErrorMessage,
	}
}

type metaErrorBody struct {
	Error *struct {
		Message      string `json:"message"`
		ErrorUserMsg string `json:"error_user_msg"`
	} `json:"error"`
}

func metaErrorMessage(body []byte) string {
	var e metaErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == nil {
		return string(body)
	}
	if e.Error.ErrorUserMsg != "" {
		return e.Error.ErrorUserMsg
	}
	if e.Error.Message != "" {
		return e.Error.Message
	}
	return string(body)
}
