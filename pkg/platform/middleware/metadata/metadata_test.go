package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertical/pkg/requestcontext"
)

func TestClientAddress(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "direct ipv4", remote: "203.0.113.7:5123", want: "203.0.113.7"},
		{name: "direct ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "untrusted forwarder ignored", remote: "203.0.113.7:5123",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1"}, want: "203.0.113.7"},
		{name: "trusted forwarder first hop", remote: "10.1.2.3:80",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.2.3"}, want: "198.51.100.1"},
		{name: "trusted forwarder garbage", remote: "10.1.2.3:80",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "10.1.2.3"},
		{name: "trusted real ip", remote: "10.1.2.3:80",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"}, want: "198.51.100.9"},
		{name: "unparseable remote kept", remote: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := ClientAddress(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = requestcontext.ClientIP(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/reliability/phone", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrefixes(t *testing.T) {
	got, err := ParsePrefixes([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
	}, got)

	_, err = ParsePrefixes([]string{"nope"})
	assert.Error(t, err)
}
