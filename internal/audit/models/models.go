package models

import (
	"time"

	id "vertical/pkg/domain"
)

// RemoteAddrMaxLen bounds the stored caller address.
const RemoteAddrMaxLen = 64

// Request is captured once per inbound call, before any handler runs.
// Body holds raw JSON and is nil when the caller sent nothing.
type Request struct {
	ID         id.RequestID
	RemoteAddr string
	Method     string
	Path       string
	Body       []byte
	CreatedAt  time.Time
}

// Response is the materialized outcome of a recorded Request.
type Response struct {
	RequestID  id.RequestID
	Body       []byte
	StatusCode int
	CreatedAt  time.Time
}

// TruncateRemoteAddr cuts addr to RemoteAddrMaxLen bytes.
func TruncateRemoteAddr(addr string) string {
	if len(addr) > RemoteAddrMaxLen {
		return addr[:RemoteAddrMaxLen]
	}
	return addr
}
