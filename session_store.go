package donorlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vitalsync/donorlink/authapi"
	"github.com/vitalsync/donorlink/token"
)

// persistedSessionRecord is the wire shape of the session record stored
// under Storage.SessionKey. The field names are shared with earlier clients
// and must not change.
type persistedSessionRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

func encodeSessionRecord(sess Session) (string, error) {
	data, err := json.Marshal(persistedSessionRecord{
		ID:          sess.ID,
		DisplayName: sess.DisplayName,
		Email:       sess.Email,
		Role:        string(sess.Role),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return string(data), nil
}

func decodeSessionRecord(raw string) (Session, error) {
	var record persistedSessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	role, err := ParseRole(record.Role)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sess := Session{
		ID:          record.ID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
		Role:        role,
	}
	if err := sess.validate(); err != nil {
		return Session{}, err
	}

	return sess, nil
}

// Initialize hydrates the session from the persistent store. A malformed
// record is deleted and treated as absent; a store failure leaves the
// session absent without deleting anything. Both degrade silently from the
// caller's perspective — Initialize only errors on a cancelled context.
//
// Initialize must complete before guards evaluate their first decision; it
// marks the client Ready even on the degraded paths.
func (c *Client) Initialize(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	defer c.initialized.Store(true)

	raw, present, err := c.kv.Get(ctx, c.config.Storage.SessionKey)
	if err != nil {
		c.metricInc(MetricPersistenceError)
		c.emit(ctx, AuditEvent{
			EventType: EventPersistenceError,
			Error:     err.Error(),
			Metadata:  map[string]string{"op": "initialize.read"},
		})
		return nil
	}
	if !present {
		return nil
	}

	sess, err := decodeSessionRecord(raw)
	if err != nil {
		if delErr := c.kv.Delete(ctx, c.config.Storage.SessionKey); delErr != nil {
			c.metricInc(MetricPersistenceError)
			c.emit(ctx, AuditEvent{
				EventType: EventPersistenceError,
				Error:     delErr.Error(),
				Metadata:  map[string]string{"op": "initialize.discard"},
			})
		}
		c.metricInc(MetricSessionDiscarded)
		c.emit(ctx, AuditEvent{
			EventType: EventSessionDiscarded,
			Error:     err.Error(),
		})
		return nil
	}

	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()

	c.metricInc(MetricSessionRestored)
	c.emit(ctx, AuditEvent{
		EventType: EventSessionRestored,
		UserID:    sess.ID,
		Email:     sess.Email,
		Success:   true,
	})

	return nil
}

// Login authenticates against the remote backend and, on success, replaces
// the current session wholesale. The persisted record and auth token are
// written before the in-memory snapshot becomes visible; a persistence
// failure is audited and the login still succeeds.
//
// A rejection yields [ErrAuthentication] and a transport fault yields
// [ErrTransport]; both leave any existing session untouched. A success
// response that does not form a valid session yields [ErrValidation].
// Concurrent logins are not serialized — last write wins.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	if c == nil || c.auth == nil {
		return Session{}, ErrClientNotReady
	}

	start := time.Now()

	result, err := c.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, authapi.ErrRejected) {
			c.metricInc(MetricLoginRejected)
			c.emit(ctx, AuditEvent{
				EventType: EventLoginRejected,
				Email:     email,
				Error:     err.Error(),
			})
			return Session{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		c.metricInc(MetricLoginTransportError)
		c.emit(ctx, AuditEvent{
			EventType: EventLoginTransportError,
			Email:     email,
			Error:     err.Error(),
		})
		return Session{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	sess, err := sessionFromLogin(result)
	if err != nil {
		c.metricInc(MetricLoginRejected)
		c.emit(ctx, AuditEvent{
			EventType: EventLoginRejected,
			Email:     email,
			Error:     err.Error(),
		})
		return Session{}, err
	}

	c.inspectToken(ctx, result, sess)

	// Persisted state is written before the in-memory snapshot becomes
	// visible to guards. Failures here degrade to audit + metrics only.
	if record, encErr := encodeSessionRecord(sess); encErr == nil {
		if setErr := c.kv.Set(ctx, c.config.Storage.SessionKey, record); setErr != nil {
			c.reportPersistence(ctx, "login.session", setErr)
		}
	}
	if result.Token != "" {
		if setErr := c.kv.Set(ctx, c.config.Storage.TokenKey, result.Token); setErr != nil {
			c.reportPersistence(ctx, "login.token", setErr)
		}
	}

	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()

	c.metricInc(MetricLoginSuccess)
	c.metricObserve(MetricLoginLatency, time.Since(start))
	c.emit(ctx, AuditEvent{
		EventType: EventLoginSuccess,
		UserID:    sess.ID,
		Email:     sess.Email,
		Success:   true,
	})

	return sess, nil
}

// Logout clears the in-memory session and removes the persisted record and
// token. It is idempotent: logging out with no active session still
// succeeds, and persistence failures degrade to audit + metrics.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}

	c.mu.Lock()
	had := c.session != nil
	var userID string
	if had {
		userID = c.session.ID
	}
	c.session = nil
	c.mu.Unlock()

	if err := c.kv.Delete(ctx, c.config.Storage.SessionKey); err != nil {
		c.reportPersistence(ctx, "logout.session", err)
	}
	if err := c.kv.Delete(ctx, c.config.Storage.TokenKey); err != nil {
		c.reportPersistence(ctx, "logout.token", err)
	}

	c.metricInc(MetricLogout)
	c.emit(ctx, AuditEvent{
		EventType: EventLogout,
		UserID:    userID,
		Success:   true,
		Metadata:  map[string]string{"had_session": fmt.Sprintf("%t", had)},
	})

	return nil
}

func sessionFromLogin(result authapi.LoginResult) (Session, error) {
	role, err := ParseRole(result.Role)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	displayName := strings.TrimSpace(result.DisplayName)
	if displayName == "" {
		displayName = displayNameFromEmail(result.Email)
	}

	sess := Session{
		ID:          result.UserID,
		DisplayName: displayName,
		Email:       result.Email,
		Role:        role,
	}
	if err := sess.validate(); err != nil {
		return Session{}, err
	}

	return sess, nil
}

// displayNameFromEmail derives a display name for backends that omit one.
func displayNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}

// inspectToken cross-checks backend token claims against the login response.
// Mismatches are advisory: audited, never surfaced as a login failure.
func (c *Client) inspectToken(ctx context.Context, result authapi.LoginResult, sess Session) {
	if c.tokens == nil || !c.config.Token.InspectClaims || result.Token == "" {
		return
	}

	var claims *token.Claims
	var err error
	if c.config.Token.VerifyMethod != "" {
		claims, err = c.tokens.Verify(result.Token)
	} else {
		claims, err = c.tokens.Peek(result.Token)
	}
	if err != nil {
		c.emit(ctx, AuditEvent{
			EventType: EventTokenClaimsMismatch,
			UserID:    sess.ID,
			Error:     err.Error(),
			Metadata:  map[string]string{"reason": "parse"},
		})
		return
	}

	if subject := claims.UserID(); subject != "" && subject != sess.ID {
		c.emit(ctx, AuditEvent{
			EventType: EventTokenClaimsMismatch,
			UserID:    sess.ID,
			Metadata: map[string]string{
				"reason":        "subject",
				"token_subject": subject,
			},
		})
	}
}

func (c *Client) reportPersistence(ctx context.Context, op string, err error) {
	c.metricInc(MetricPersistenceError)
	c.emit(ctx, AuditEvent{
		EventType: EventPersistenceError,
		Error:     err.Error(),
		Metadata:  map[string]string{"op": op},
	})
}
