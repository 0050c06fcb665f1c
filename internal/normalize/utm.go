package normalize

import (
	"net/url"
	"strings"
)

// UTMs holds the campaign attribution parameters of a page URL. Unset values encode as null.
type UTMs struct {
	Source   *string `json:"utm_source"`
	Medium   *string `json:"utm_medium"`
	Campaign *string `json:"utm_campaign"`
	Term     *string `json:"utm_term"`
	Content  *string `json:"utm_content"`
}

func (u *UTMs) field(key string) **string {
	switch key {
	case "utm_source":
		return &u.Source
	case "utm_medium":
		return &u.Medium
	case "utm_campaign":
		return &u.Campaign
	case "utm_term":
		return &u.Term
	case "utm_content":
		return &u.Content
	}
	return nil
}

// ExtractUTMs reads the utm_* parameters from the query part of rawURL.
// Only the text after the first '?' is considered. A value that is not valid percent-encoding is kept raw.
func ExtractUTMs(rawURL string) UTMs {
	var out UTMs

	_, query, ok := strings.Cut(rawURL, "?")
	if !ok {
		return out
	}

	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			continue
		}
		dst := out.field(key)
		if dst == nil {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			decoded = value
		}
		*dst = &decoded
	}
	return out
}
