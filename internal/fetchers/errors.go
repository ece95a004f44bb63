package fetchers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a chart-data fetch failure. All kinds are
// non-fatal to a refresh loop: the caller logs them, keeps its prior
// chart state and retries on the next tick.
type ErrorKind int

const (
	// KindNetwork covers transport failures and non-2xx responses.
	KindNetwork ErrorKind = iota + 1
	// KindParse covers malformed JSON and misaligned payloads.
	KindParse
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError wraps a failed chart-data fetch with its classification
// and the URL it targeted.
type FetchError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error fetching %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a network-kind fetch failure.
func IsNetwork(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindNetwork
}

// IsParse reports whether err is a parse-kind fetch failure.
func IsParse(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindParse
}

func networkErr(url string, err error) error {
	return &FetchError{Kind: KindNetwork, URL: url, Err: err}
}

func parseErr(url string, err error) error {
	return &FetchError{Kind: KindParse, URL: url, Err: err}
}
