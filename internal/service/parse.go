package service

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/normalize"
)

var errInvalidJSON = apierror.BadRequest("Invalid JSON")

// Parse decodes a request body, accepting snake_case or camelCase keys.
func Parse(body []byte) (domain.Request, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return domain.Request{}, errors.Wrap(err, "decode body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Request{}, errors.New("decode body: trailing data")
	}

	normalized, err := json.Marshal(normalize.CamelKeys(raw))
	if err != nil {
		return domain.Request{}, errors.Wrap(err, "encode normalized body")
	}

	var req domain.Request
	if err := json.Unmarshal(normalized, &req); err != nil {
		return domain.Request{}, errors.Wrap(err, "decode request")
	}
	return req, nil
}

// Validate checks the required fields in the order they are reported to callers.
func Validate(req domain.Request) error {
	d := req.Data
	switch {
	case !d.HasSelector():
		return apierror.MissingField("Event/conversion is missing", "metaEvent|gaEvent|gadsConversionLabel")
	case d.EventID == "":
		return apierror.MissingField("Event ID is missing", "eventId")
	case d.EventURL == "":
		return apierror.MissingField("Event URL is missing", "eventUrl")
	case d.UserID == "":
		return apierror.MissingField("User ID is missing", "userId")
	}
	return nil
}
