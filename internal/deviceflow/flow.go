// Package deviceflow drives the polling state machine and session lifecycle
// of the OAuth 2.0 device authorization grant (RFC 8628).
package deviceflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/internal/metrics"
	"github.com/halcyonlab/entra-token-util/internal/provider"
	"github.com/halcyonlab/entra-token-util/internal/session"
)

const (
	// DefaultInterval is the poll cadence applied when the provider omits
	// one, per RFC 8628 section 3.2.
	DefaultInterval = 5

	// DefaultExpiresIn bounds the device code lifetime when the provider
	// omits expires_in.
	DefaultExpiresIn = 900
)

// ProviderClient issues the two device-grant calls. *provider.Client is the
// production implementation; tests substitute fakes.
type ProviderClient interface {
	RequestDeviceCode(ctx context.Context, clientID, scope string) (*provider.DeviceCodeGrant, error)
	RedeemDeviceCode(ctx context.Context, clientID, deviceCode string) (*provider.Redemption, error)
}

// Flow orchestrates device authorization flows: it obtains device codes,
// tracks sessions, and advances the polling state machine one step at a time.
type Flow struct {
	client  ProviderClient
	store   session.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a flow orchestrator using the given provider client and
// session store.
func New(client ProviderClient, store session.Store, opts ...Option) *Flow {
	f := &Flow{
		client: client,
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start requests a device code from the provider, records the flow session,
// and returns the payload to show the user.
func (f *Flow) Start(ctx context.Context, clientID, scope string) (*StartResult, error) {
	grant, err := f.client.RequestDeviceCode(ctx, clientID, scope)
	if err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}

	interval := grant.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	expiresIn := grant.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}

	sess := &session.Session{
		ClientID:   clientID,
		DeviceCode: grant.DeviceCode,
		Interval:   interval,
		ExpiresAt:  f.now().Add(time.Duration(expiresIn) * time.Second),
	}
	id, err := f.store.Create(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	f.metrics.FlowStarted()
	f.logger.Debug("device flow started",
		zap.String("session_id", id),
		zap.String("client_id", clientID),
		zap.Int("interval", interval),
		zap.Time("expires_at", sess.ExpiresAt))

	return &StartResult{
		SessionID:       id,
		UserCode:        grant.UserCode,
		VerificationURI: grant.VerificationURI,
		Message:         grant.Message,
		Interval:        interval,
	}, nil
}

// Advance runs exactly one polling step for the given session. Terminal
// outcomes delete the session before returning, so a session is never
// observed twice in a terminal state. Transport failures leave the session in
// place; the caller may retry at the usual cadence.
func (f *Flow) Advance(ctx context.Context, sessionID string) (*Outcome, error) {
	sess, err := f.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	// Expiry wins over whatever the provider would say, and skips the
	// network call entirely.
	if !f.now().Before(sess.ExpiresAt) {
		return f.finish(ctx, sess, &Outcome{State: StateExpired})
	}

	f.metrics.PollAttempt()
	red, err := f.client.RedeemDeviceCode(ctx, sess.ClientID, sess.DeviceCode)
	if err != nil {
		return nil, fmt.Errorf("redeeming device code: %w", err)
	}

	switch red.Status {
	case provider.RedemptionPending:
		// The expected steady state, not a failure.
		return &Outcome{
			State:      StatePending,
			RetryAfter: time.Duration(sess.Interval) * time.Second,
		}, nil

	case provider.RedemptionAuthorized:
		return f.finish(ctx, sess, &Outcome{State: StateAuthorized, Token: red.Token})

	case provider.RedemptionDenied:
		return f.finish(ctx, sess, &Outcome{State: StateDenied, OAuthErr: red.OAuthErr})

	default:
		return f.finish(ctx, sess, &Outcome{
			State:      StateError,
			StatusCode: red.HTTPStatus,
			RawBody:    red.RawBody,
		})
	}
}

// Wait drives Advance in a blocking loop until a terminal state is reached,
// sleeping the session interval between pending outcomes. Cancelling the
// context aborts the loop; the undeleted session expires naturally.
func (f *Flow) Wait(ctx context.Context, sessionID string) (*Outcome, error) {
	for {
		outcome, err := f.Advance(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if outcome.State.Terminal() {
			return outcome, nil
		}
		if err := f.sleep(ctx, outcome.RetryAfter); err != nil {
			return nil, err
		}
	}
}

// CheckHealth verifies the session store backing the flow is healthy.
func (f *Flow) CheckHealth(ctx context.Context) error {
	return f.store.CheckHealth(ctx)
}

func (f *Flow) finish(ctx context.Context, sess *session.Session, outcome *Outcome) (*Outcome, error) {
	if err := f.store.Delete(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("deleting session: %w", err)
	}

	f.metrics.FlowFinished(string(outcome.State))
	f.logger.Debug("device flow finished",
		zap.String("session_id", sess.ID),
		zap.String("state", string(outcome.State)))

	return outcome, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
