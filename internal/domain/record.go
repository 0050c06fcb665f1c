package domain

import (
	"time"

	"github.com/leshachaplin/eventrelay/internal/normalize"
)

// Record is the canonical event built for one request. Personal data is only kept hashed.
type Record struct {
	EventID  string
	EventURL string
	UserID   string

	HashedFirstName *string
	HashedLastName  *string
	HashedEmail     *string
	HashedPhone     *string

	ClientIP  *string
	UserAgent *string

	CookieFbp   *string
	CookieFbc   *string
	CookieGclid *string

	Time time.Time
	UTMs normalize.UTMs
}

// Unix is the event time in seconds.
func (r Record) Unix() int64 {
	return r.Time.Unix()
}
