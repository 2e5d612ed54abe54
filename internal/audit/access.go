package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mssola/useragent"

	"vertical/pkg/platform/middleware/requesttime"
)

const (
	missing         = "-"
	userAgentMaxLen = 64
)

// AccessEntry is one line of the access log.
type AccessEntry struct {
	RequestID      string
	RemoteAddr     string
	Referer        string
	UserAgent      string
	Method         string
	Path           string
	ResponseLength int
	ResponseCode   int
	ContractID     string
}

// AccessLogger writes access log lines with parsed user-agent fields.
type AccessLogger struct {
	logger *slog.Logger
}

func NewAccessLogger(logger *slog.Logger) *AccessLogger {
	return &AccessLogger{logger: logger}
}

// Log emits the entry with the time elapsed since the request started.
func (a *AccessLogger) Log(ctx context.Context, e AccessEntry) {
	if a == nil || a.logger == nil {
		return
	}
	attrs := []any{
		"request_time", requesttime.Elapsed(ctx).Seconds(),
		"request_id", orMissing(e.RequestID),
		"remote_addr", orMissing(e.RemoteAddr),
		"referer", orMissing(e.Referer),
		"user_agent", orMissing(truncate(e.UserAgent, userAgentMaxLen)),
	}
	attrs = append(attrs, userAgentAttrs(e.UserAgent)...)
	attrs = append(attrs,
		"method", e.Method,
		"path", e.Path,
		"response_length", e.ResponseLength,
		"response_code", e.ResponseCode,
	)
	if e.ContractID != "" {
		attrs = append(attrs, "contract_id", e.ContractID)
	}
	a.logger.InfoContext(ctx, "access info", attrs...)
}

func entryFrom(r *http.Request, requestID, remoteAddr string) AccessEntry {
	return AccessEntry{
		RequestID:  requestID,
		RemoteAddr: remoteAddr,
		Referer:    r.Referer(),
		UserAgent:  r.UserAgent(),
		Method:     r.Method,
		Path:       r.URL.Path,
	}
}

func userAgentAttrs(raw string) []any {
	if raw == "" {
		return []any{"ua_browser", missing, "ua_os", missing, "ua_mobile", missing}
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	return []any{
		"ua_browser", orMissing(browser),
		"ua_os", orMissing(ua.OS()),
		"ua_mobile", strconv.FormatBool(ua.Mobile()),
	}
}

func orMissing(v string) string {
	if v == "" {
		return missing
	}
	return v
}

func truncate(v string, n int) string {
	if len(v) > n {
		return v[:n]
	}
	return v
}
