package utils

import (
	"net"
	"net/http"
	"strings"
)

const unknown = "unknown"

// Location buckets. No external geolocation lookup is performed.
const (
	LocationLocal    = "local"
	LocationInternal = "internal"
	LocationUnknown  = "unknown"
)

// ipHeaders are checked in order before falling back to the transport
// remote address. A blank value or the literal "unknown" is skipped.
var ipHeaders = []string{
	"X-Forwarded-For",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
	"HTTP_CLIENT_IP",
	"HTTP_X_FORWARDED_FOR",
}

// ClientIP resolves the originating client address, honoring common
// proxy headers.
func ClientIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v := strings.TrimSpace(r.Header.Get(h))
		if v == "" || strings.EqualFold(v, unknown) {
			continue
		}
		// Forwarded chains list the client first.
		if idx := strings.Index(v, ","); idx != -1 {
			v = strings.TrimSpace(v[:idx])
		}
		if v != "" && !strings.EqualFold(v, unknown) {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserAgent returns the User-Agent header, "unknown" when absent.
func UserAgent(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return unknown
	}
	return ua
}

var browserTokens = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera", "Internet Explorer"}

var osTokens = []string{"Windows", "Mac", "Linux", "Android", "iOS"}

// Browser identifies the browser family by ordered substring match,
// first match wins.
func Browser(userAgent string) string {
	return matchToken(userAgent, browserTokens)
}

// OS identifies the operating system family by ordered substring match.
func OS(userAgent string) string {
	return matchToken(userAgent, osTokens)
}

func matchToken(userAgent string, tokens []string) string {
	lower := strings.ToLower(userAgent)
	for _, t := range tokens {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t
		}
	}
	return unknown
}

// Location buckets an IP address: loopback addresses are "local",
// RFC1918 private ranges are "internal", everything else "unknown".
func Location(ipAddress string) string {
	if ipAddress == "" {
		return LocationUnknown
	}
	if ipAddress == "localhost" {
		return LocationLocal
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return LocationUnknown
	}
	if ip.IsLoopback() {
		return LocationLocal
	}
	if ip.IsPrivate() {
		return LocationInternal
	}
	return LocationUnknown
}

// Truncate caps s at maxLen runes of the original text, appending "..."
// when anything was cut. Counting runes keeps multi-byte characters intact.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
