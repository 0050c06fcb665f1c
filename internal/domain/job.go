package domain

import (
	"net/http"
	"time"
)

// Inbound is what the HTTP layer hands to the dispatcher: the raw body plus connection metadata.
type Inbound struct {
	RequestID  string
	Body       []byte
	Header     http.Header
	RemoteAddr string
	ReceivedAt time.Time
}

// Job is an inbound request accepted for background dispatch.
type Job struct {
	ID      string
	Inbound Inbound
}
