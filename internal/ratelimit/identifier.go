package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownValue is what the IP chain resolves to when no client address can
// be determined. Requests carrying it are always rejected.
const UnknownValue = "unknown"

// Kind says what an identifier value is. The three kinds are never
// conflated: the same string as an IP and as a device id are two separate
// quota subjects.
type Kind int

const (
	KindIP Kind = iota
	KindUser
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "ip"
	case KindUser:
		return "user"
	case KindDevice:
		return "device"
	default:
		return "invalid"
	}
}

// Identifier is the rate-limit subject: a kind plus its value.
type Identifier struct {
	Kind  Kind
	Value string
}

func IP(value string) Identifier     { return Identifier{Kind: KindIP, Value: value} }
func User(value string) Identifier   { return Identifier{Kind: KindUser, Value: value} }
func Device(value string) Identifier { return Identifier{Kind: KindDevice, Value: value} }

// Key returns the cache/database key component for this identifier.
func (i Identifier) Key() string {
	return i.Kind.String() + ":" + i.Value
}

// IsUnknown reports whether no identity could be established. The absence
// of identity is never a quota bypass.
func (i Identifier) IsUnknown() bool {
	return i.Value == "" || i.Value == UnknownValue
}

// ClientIP resolves the caller address from the prioritized header chain:
// cf-connecting-ip, then the first x-forwarded-for entry, then the
// platform-provided remote address.
func ClientIP(h http.Header, remoteAddr string) string {
	if ip := strings.TrimSpace(h.Get("cf-connecting-ip")); ip != "" {
		return ip
	}
	if fwd := h.Get("x-forwarded-for"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return UnknownValue
}

// RequestContext carries the identity facts a request resolved upstream.
type RequestContext struct {
	UserID   string
	DeviceID string
	ClientIP string
}

// Resolve picks the quota subject for a request. Authenticated users are
// preferred so quotas cannot be evaded by proxy rotation; device ids cover
// guest-mode flows whose quota must survive IP churn; everything else falls
// back to the client IP.
func Resolve(rc RequestContext) Identifier {
	if rc.UserID != "" {
		return User(rc.UserID)
	}
	if rc.DeviceID != "" {
		return Device(rc.DeviceID)
	}
	if rc.ClientIP != "" {
		return IP(rc.ClientIP)
	}
	return IP(UnknownValue)
}
