// Package translator sends single text segments to a remote machine
// translation API and classifies failures so the retry layer can decide
// what is recoverable.
package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/pdftran/internal/creds"
)

// Kind classifies a translation failure.
type Kind int

const (
	// KindAuth — the service rejected the access token or API key.
	KindAuth Kind = iota + 1
	// KindRateLimit — the service is throttling requests.
	KindRateLimit
	// KindTransient — network failure or a 5xx response.
	KindTransient
	// KindPermanent — a 4xx the service will keep returning for the
	// same input (malformed text, unsupported language pair). Never
	// retried.
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate-limit"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Error is a classified translation failure.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 for network-level failures
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// KindOf extracts the classification from err. Errors that did not come
// from a translation client report KindPermanent so they are never
// retried by mistake.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindPermanent
}

// Client translates one segment per call. Implementations must not
// mutate credential state; they receive a read-only snapshot and report
// auth failures through the error classification instead.
type Client interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string, cr creds.Credentials) (string, error)
}

// classifyStatus maps an HTTP status and the API's error reason onto a
// Kind. Google reports quota exhaustion as 403 with a rate-limit
// reason, so the reason string disambiguates auth from throttling.
func classifyStatus(status int, reason string) Kind {
	switch {
	case status == 401:
		return KindAuth
	case status == 403:
		switch reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded", "quotaExceeded":
			return KindRateLimit
		default:
			return KindAuth
		}
	case status == 429:
		return KindRateLimit
	case status >= 500:
		return KindTransient
	default:
		return KindPermanent
	}
}
