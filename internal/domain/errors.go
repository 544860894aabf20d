package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrUnsupportedModel      = errors.New("unsupported model")
	ErrUnsupportedProvider   = errors.New("unsupported provider")
	ErrNoCompatibleKey       = errors.New("no compatible key")
	ErrAllKeysDisabled       = errors.New("all keys disabled")
	ErrUpstreamEmptyResponse = errors.New("upstream empty response")
	ErrOverallTimeout        = errors.New("overall timeout")
	ErrNetwork               = errors.New("network error")
	ErrInvalidKeyIndex       = errors.New("invalid key index")
)

// UpstreamHTTPError is a non-success HTTP reply from a provider.
type UpstreamHTTPError struct {
	Status int
	Body   string
}

func (e *UpstreamHTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("upstream http %d: %s", e.Status, body)
}

// ExhaustedError is returned when the attempt budget ran out without success.
// LastStatus is the most recent upstream HTTP status seen, 0 if none was.
type ExhaustedError struct {
	Attempts   int
	LastStatus int
	Err        error
}

func (e *ExhaustedError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("exhausted after %d attempts (last status %d): %v", e.Attempts, e.LastStatus, e.Err)
	}
	return fmt.Sprintf("exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// ErrorKind is a coarse class used by transports to render errors.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindAuth            ErrorKind = "auth"
	KindQuota           ErrorKind = "quota"
	KindBadRequest      ErrorKind = "bad_request"
	KindModel           ErrorKind = "model"
	KindTimeout         ErrorKind = "timeout"
	KindNetwork         ErrorKind = "network"
	KindKeysUnavailable ErrorKind = "keys_unavailable"
	KindInvalidKeyIndex ErrorKind = "invalid_key_index"
	KindUnknown         ErrorKind = "unknown"
)

// Kind classifies err. Upstream statuses win over generic wrappers.
func Kind(err error) ErrorKind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidKeyIndex):
		return KindInvalidKeyIndex
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrUnsupportedProvider):
		return KindInvalidArgument
	case errors.Is(err, ErrUnsupportedModel):
		return KindModel
	case errors.Is(err, ErrNoCompatibleKey), errors.Is(err, ErrAllKeysDisabled):
		return KindKeysUnavailable
	case errors.Is(err, ErrOverallTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	if status := UpstreamStatus(err); status != 0 {
		switch {
		case status == 401 || status == 403:
			return KindAuth
		case status == 429:
			return KindQuota
		case status == 404:
			return KindModel
		case status == 400:
			return KindBadRequest
		}
		return KindUnknown
	}
	var ne net.Error
	if errors.Is(err, ErrNetwork) || errors.As(err, &ne) {
		if ne != nil && ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUnknown
}

// UpstreamStatus returns the upstream HTTP status carried by err, 0 if none.
func UpstreamStatus(err error) int {
	var ex *ExhaustedError
	if errors.As(err, &ex) && ex.LastStatus != 0 {
		return ex.LastStatus
	}
	var he *UpstreamHTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
