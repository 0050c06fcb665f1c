package service

import (
	"net"
	"strings"

	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/normalize"
)

// BuildRecord derives the canonical record. Explicit first and last names win over a
// parsed full name; the full name is parsed only when one of them is missing.
func (s *Service) BuildRecord(req domain.Request, in domain.Inbound) domain.Record {
	d := req.Data
	ud := d.UserData

	var parsed normalize.Name
	if ud.Name != "" && (ud.FirstName == "" || ud.LastName == "") {
		parsed = normalize.ParseName(ud.Name.String())
	}

	firstName := ud.FirstName.Ptr()
	if firstName == nil {
		firstName = parsed.FirstName
	}
	lastName := ud.LastName.Ptr()
	if lastName == nil {
		lastName = parsed.LastName
	}

	ts := in.ReceivedAt
	if ts.IsZero() {
		ts = s.now()
	}

	return domain.Record{
		EventID:  d.EventID.String(),
		EventURL: d.EventURL.String(),
		UserID:   d.UserID.String(),

		HashedFirstName: normalize.HashPtr(firstName),
		HashedLastName:  normalize.HashPtr(lastName),
		HashedEmail:     normalize.Hash(ud.Email.String()),
		HashedPhone:     normalize.Hash(ud.Phone.String()),

		ClientIP:  clientIP(in),
		UserAgent: domain.Text(in.Header.Get("User-Agent")).Ptr(),

		CookieFbp:   d.CookieFbp.Ptr(),
		CookieFbc:   d.CookieFbc.Ptr(),
		CookieGclid: d.CookieGclid.Ptr(),

		Time: ts,
		UTMs: normalize.ExtractUTMs(d.EventURL.String()),
	}
}

// clientIP prefers the edge proxy header, then the first X-Forwarded-For hop, then the
// peer address when it is a routable IP.
func clientIP(in domain.Inbound) *string {
	if ip := strings.TrimSpace(in.Header.Get("CF-Connecting-IP")); ip != "" {
		return &ip
	}

	if xff := in.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return &ip
		}
	}

	host, _, err := net.SplitHostPort(in.RemoteAddr)
	if err != nil {
		host = in.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil && !ip.IsLoopback() && !ip.IsUnspecified() {
		return &host
	}
	return nil
}
