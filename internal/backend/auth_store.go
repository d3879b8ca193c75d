package backend

import (
	"context"
	"sync"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionPersister keeps a session outside the process.
type SessionPersister interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Clear(ctx context.Context) error
}

// AuthStore holds the authentication state of one client. It is loaded
// once from its persister and cleared on logout.
type AuthStore struct {
	mu        sync.RWMutex
	session   models.Session
	persister SessionPersister
	now       func() time.Time
}

// NewAuthStore creates an empty store. persister may be nil, in which case
// the session only lives in memory.
func NewAuthStore(persister SessionPersister) *AuthStore {
	return &AuthStore{persister: persister, now: time.Now}
}

// Load replaces the in-memory session with the persisted one.
func (a *AuthStore) Load(ctx context.Context) error {
	if a.persister == nil {
		return nil
	}
	session, err := a.persister.Load(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	return nil
}

// Save stores a new session and persists it.
func (a *AuthStore) Save(ctx context.Context, token string, record map[string]any) error {
	session := models.Session{Token: token, Record: record}
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	if a.persister == nil {
		return nil
	}
	return a.persister.Save(ctx, session)
}

// Clear drops the session in memory and in the persister.
func (a *AuthStore) Clear(ctx context.Context) error {
	a.mu.Lock()
	a.session = models.Session{}
	a.mu.Unlock()

	if a.persister == nil {
		return nil
	}
	return a.persister.Clear(ctx)
}

// Token returns the raw session token.
func (a *AuthStore) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Token
}

// Record returns the authenticated record, if any.
func (a *AuthStore) Record() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Record
}

// Username returns the username field of the authenticated record.
func (a *AuthStore) Username() string {
	if v, ok := a.Record()["username"].(string); ok {
		return v
	}
	return ""
}

// IsValid reports whether a token is held and has not expired. The token
// signature is not checked; only the store can do that. A token without an
// exp claim is considered valid.
func (a *AuthStore) IsValid() bool {
	token := a.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return len(claims) > 0
	}
	return exp.After(a.now())
}
