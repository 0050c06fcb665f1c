package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the inbound envelope after key normalization.
type Request struct {
	Data Data `json:"data"`
	Meta Meta `json:"meta"`
}

// Data carries the event itself and the raw user identifiers.
type Data struct {
	EventID  Text     `json:"eventId"`
	EventURL Text     `json:"eventUrl"`
	UserID   Text     `json:"userId"`
	UserData UserData `json:"userData"`

	CookieFbp   Text `json:"cookieFbp"`
	CookieFbc   Text `json:"cookieFbc"`
	CookieGclid Text `json:"cookieGclid"`

	MetaEvent           Text `json:"metaEvent"`
	GAEvent             Text `json:"gaEvent"`
	GadsConversionLabel Text `json:"gadsConversionLabel"`
}

// UserData is unhashed personal data as sent by the browser.
type UserData struct {
	Name      Text `json:"name"`
	FirstName Text `json:"firstName"`
	LastName  Text `json:"lastName"`
	Email     Text `json:"email"`
	Phone     Text `json:"phone"`
}

// Meta holds per-request routing identifiers. None of them are secret.
type Meta struct {
	MetaPixelID     Text `json:"metaPixelId"`
	MetaTestCode    Text `json:"metaTestCode"`
	GAMeasurementID Text `json:"gaMeasurementId"`
}

// HasSelector reports whether at least one destination was asked for.
func (d Data) HasSelector() bool {
	return d.MetaEvent != "" || d.GAEvent != "" || d.GadsConversionLabel != ""
}

// Text is a string field that also accepts JSON numbers and booleans, since browsers
// tend to send ids unquoted. null decodes to the empty string.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("expected string, got %s", data[:1])
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*t = Text(n.String())
			return nil
		}
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b {
			*t = "true"
		} else {
			*t = "false"
		}
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Ptr returns nil for the empty string.
func (t Text) Ptr() *string {
	if t == "" {
		return nil
	}
	s := string(t)
	return &s
}
