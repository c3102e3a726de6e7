package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("model returned no JSON"), false},
		{"tagged transient", NewTransientError(errors.New("overloaded"), 529), true},
		{"wrapped transient", fmt.Errorf("anthropic invoke: %w", NewTransientError(errors.New("rate limited"), 429)), true},
		{"connection reset errno", fmt.Errorf("write tcp: %w", syscall.ECONNRESET), true},
		{"connection refused errno", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"dns timeout", &net.DNSError{IsTimeout: true, Err: "lookup timed out"}, true},
		{"reset by message", errors.New("read: connection reset by peer"), true},
		{"broken pipe by message", errors.New("write: broken pipe"), true},
		{"tls handshake by message", errors.New("net/http: TLS handshake timeout"), true},
		{"io timeout by message", errors.New("read tcp: i/o timeout"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("status %d should retry", code)
		}
	}
	for _, code := range []int{200, 202, 400, 401, 403, 404, 409, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("status %d should not retry", code)
		}
	}
}

func TestTransientError_CarriesCauseAndStatus(t *testing.T) {
	cause := errors.New("search backend 503")
	te := NewTransientError(cause, 503)

	if !errors.Is(te, cause) {
		t.Error("unwrap chain should reach the cause")
	}
	if te.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", te.StatusCode)
	}
	if te.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", te.Error(), cause.Error())
	}
}
