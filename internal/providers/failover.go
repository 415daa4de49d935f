package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// FailoverErrorCategory classifies the last error surfaced when every
// provider in a cascade fails or is skipped.
type FailoverErrorCategory string

const (
	CategoryRateLimited FailoverErrorCategory = "rate_limited"
	CategoryTimeout     FailoverErrorCategory = "timeout"
	CategoryConnection  FailoverErrorCategory = "connection"
)

// FailoverError is returned when an entire provider cascade is exhausted.
type FailoverError struct {
	Category       FailoverErrorCategory
	RetryAfterSecs int
	Underlying     error
}

func (e *FailoverError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Category, e.Underlying)
	}
	return string(e.Category)
}

func (e *FailoverError) Unwrap() error { return e.Underlying }

// BreakerConfig configures a provider's circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and probes
// recovery after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, RecoveryTimeout: 30 * time.Second}
}

// AuthProfile is a rotatable credential with a cooldown window. A profile
// that has been rate-limited is placed into cooldown and skipped by
// rotation until it elapses.
type AuthProfile struct {
	Name          string
	CooldownUntil time.Time
}

// Available reports whether the profile's cooldown has elapsed.
func (p AuthProfile) Available(now time.Time) bool {
	return now.After(p.CooldownUntil)
}

// ProfileRotator cycles through a set of auth profiles, skipping any in
// cooldown. It has no direct caller in this core (per the spec's open
// question) and exists as a documented data type with its semantics ready
// for an integration to drive.
type ProfileRotator struct {
	mu       sync.Mutex
	profiles []AuthProfile
}

// NewProfileRotator creates a rotator over profiles.
func NewProfileRotator(profiles []AuthProfile) *ProfileRotator {
	return &ProfileRotator{profiles: profiles}
}

// Next returns the first available profile, or false if all are cooling down.
func (r *ProfileRotator) Next() (AuthProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, p := range r.profiles {
		if p.Available(now) {
			return p, true
		}
	}
	return AuthProfile{}, false
}

// Cooldown places profile name into cooldown for the given duration,
// called when that profile's provider call returns a rate-limit error.
func (r *ProfileRotator) Cooldown(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.profiles {
		if r.profiles[i].Name == name {
			r.profiles[i].CooldownUntil = time.Now().Add(d)
			return
		}
	}
}

// guardedProvider pairs a Provider with the breaker protecting calls to it.
type guardedProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker[*ChatResponse]
}

// Cascade tries a priority-ordered list of providers, skipping any whose
// circuit breaker forbids a call, and recording success/failure against
// whichever breaker it actually invoked (spec 4.O).
type Cascade struct {
	providers []guardedProvider
}

// NewCascade wires one circuit breaker per provider using cfg (or the
// default if cfg is zero-valued).
func NewCascade(providerList []Provider, cfg BreakerConfig) *Cascade {
	if cfg.FailureThreshold == 0 {
		cfg = DefaultBreakerConfig()
	}
	c := &Cascade{providers: make([]guardedProvider, 0, len(providerList))}
	for _, p := range providerList {
		name := p.Name()
		settings := gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cfg.RecoveryTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Info("provider circuit breaker state change", "provider", name, "from", from, "to", to)
			},
		}
		c.providers = append(c.providers, guardedProvider{
			provider: p,
			breaker:  gobreaker.NewCircuitBreaker[*ChatResponse](settings),
		})
	}
	return c
}

// Complete cascades req across providers in order. The first provider whose
// breaker permits a call and which succeeds wins; failures are recorded and
// the cascade continues to the next provider. If every provider fails or is
// skipped, the last observed error is returned wrapped in a FailoverError.
func (c *Cascade) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var lastErr error
	for _, gp := range c.providers {
		resp, err := gp.breaker.Execute(func() (*ChatResponse, error) {
			return gp.provider.Chat(ctx, req)
		})
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			continue
		}
		lastErr = err
	}
	return nil, classifyFailoverError(lastErr)
}

// CompleteStream is the streaming cascade variant: the same priority-order
// skip/try logic, but streaming chunks are forwarded from whichever
// provider ultimately succeeds.
func (c *Cascade) CompleteStream(ctx context.Context, req ChatRequest, onChunk func(StreamChunk)) (*ChatResponse, error) {
	var lastErr error
	for _, gp := range c.providers {
		resp, err := gp.breaker.Execute(func() (*ChatResponse, error) {
			return gp.provider.ChatStream(ctx, req, onChunk)
		})
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			continue
		}
		lastErr = err
	}
	return nil, classifyFailoverError(lastErr)
}

func classifyFailoverError(err error) error {
	if err == nil {
		return &FailoverError{Category: CategoryConnection}
	}
	var fe *FailoverError
	if errors.As(err, &fe) {
		return fe
	}
	return &FailoverError{Category: CategoryConnection, Underlying: err}
}

// State reports the current breaker state for a provider by name, for
// observability/CLI surfaces (e.g. "goclaw audit tail").
func (c *Cascade) State(providerName string) (gobreaker.State, bool) {
	for _, gp := range c.providers {
		if gp.provider.Name() == providerName {
			return gp.breaker.State(), true
		}
	}
	return 0, false
}
