package apierror

import "net/http"

type HTTPPart struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Error struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	HTTP    HTTPPart               `json:"http"`
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) StatusCode() int {
	return e.HTTP.Code
}

// WithDetail returns a copy of e with key set in Details.
func (e Error) WithDetail(key string, value interface{}) Error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func NewAPIError(msg string, status int) Error {
	return Error{
		Message: msg,
		HTTP: HTTPPart{
			Code:    status,
			Message: http.StatusText(status),
		},
	}
}

func BadRequest(msg string) Error {
	return NewAPIError(msg, http.StatusBadRequest)
}

// MissingField is the validation error for an absent required request field.
func MissingField(msg, field string) Error {
	return BadRequest(msg).WithDetail("field", field)
}
