package ratelimit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPHeaderChain(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "cloudflare header wins",
			headers:    map[string]string{"cf-connecting-ip": "198.51.100.7", "x-forwarded-for": "203.0.113.1, 10.0.0.1"},
			remoteAddr: "10.0.0.2",
			want:       "198.51.100.7",
		},
		{
			name:       "first forwarded entry",
			headers:    map[string]string{"x-forwarded-for": "203.0.113.1, 10.0.0.1, 10.0.0.2"},
			remoteAddr: "10.0.0.2",
			want:       "203.0.113.1",
		},
		{
			name:       "forwarded entry is trimmed",
			headers:    map[string]string{"x-forwarded-for": "  203.0.113.5  ,10.0.0.1"},
			remoteAddr: "",
			want:       "203.0.113.5",
		},
		{
			name:       "empty forwarded falls through to remote addr",
			headers:    map[string]string{"x-forwarded-for": "  "},
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
		{
			name:       "remote addr fallback",
			headers:    nil,
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
		{
			name:       "nothing resolves to unknown",
			headers:    nil,
			remoteAddr: "",
			want:       UnknownValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(h, tt.remoteAddr))
		})
	}
}

func TestResolvePrefersStrongerIdentity(t *testing.T) {
	tests := []struct {
		name string
		rc   RequestContext
		want Identifier
	}{
		{
			name: "user beats device and ip",
			rc:   RequestContext{UserID: "u-1", DeviceID: "d-1", ClientIP: "203.0.113.1"},
			want: User("u-1"),
		},
		{
			name: "device beats ip",
			rc:   RequestContext{DeviceID: "d-1", ClientIP: "203.0.113.1"},
			want: Device("d-1"),
		},
		{
			name: "ip when nothing else",
			rc:   RequestContext{ClientIP: "203.0.113.1"},
			want: IP("203.0.113.1"),
		},
		{
			name: "empty context is unknown",
			rc:   RequestContext{},
			want: IP(UnknownValue),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.rc))
		})
	}
}

func TestIdentifierKeySeparatesKinds(t *testing.T) {
	assert.Equal(t, "user:abc", User("abc").Key())
	assert.Equal(t, "device:abc", Device("abc").Key())
	assert.Equal(t, "ip:abc", IP("abc").Key())
	assert.NotEqual(t, User("abc").Key(), Device("abc").Key())
}

func TestIsUnknown(t *testing.T) {
	assert.True(t, IP(UnknownValue).IsUnknown())
	assert.True(t, IP("").IsUnknown())
	assert.False(t, IP("203.0.113.1").IsUnknown())
}
