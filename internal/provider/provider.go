// Package provider holds the shared plumbing for remote artist-information
// services: provider names, typed errors, rate limiting and circuit breaking.
package provider

import (
	"fmt"
	"time"
)

// ProviderName uniquely identifies a remote provider.
type ProviderName string

// Known provider names.
const (
	NameLastFM ProviderName = "lastfm"
)

// DisplayName returns a human-readable name for the provider.
func (n ProviderName) DisplayName() string {
	switch n {
	case NameLastFM:
		return "Last.fm"
	default:
		return string(n)
	}
}

// ErrProviderUnavailable indicates a transient failure (rate-limited, timeout,
// server error, open circuit, unreadable response).
type ErrProviderUnavailable struct {
	Provider   ProviderName
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested artist.
type ErrNotFound struct {
	Provider ProviderName
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: artist %s not found", e.Provider, e.ID)
}

// ErrAuthRequired indicates the provider needs an API key but none is
// configured, or the configured key was rejected.
type ErrAuthRequired struct {
	Provider ProviderName
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("provider %s: API key missing or rejected", e.Provider)
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch err.(type) {
	case nil:
		return "success"
	case *ErrNotFound:
		return "not_found"
	case *ErrAuthRequired:
		return "auth"
	default:
		return "unavailable"
	}
}
