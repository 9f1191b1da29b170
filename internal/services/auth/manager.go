package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/bananamath/internal/cache"
	"github.com/mcoot/bananamath/internal/dependencies/clock"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/storage"
)

// Config holds configuration for the auth manager
type Config struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	SessionDuration  time.Duration
	JWTSecret        []byte
	BcryptCost       int
	PersistTimeout   time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		MaxLoginAttempts: 3,
		LockoutDuration:  5 * time.Minute,
		SessionDuration:  24 * time.Hour,
		JWTSecret:        []byte("development-secret"),
		BcryptCost:       bcrypt.DefaultCost,
		PersistTimeout:   5 * time.Second,
	}
}

// loginAttempts tracks consecutive failures for one username. refs counts
// logins holding the entry and is guarded by Manager.attemptsMu.
type loginAttempts struct {
	refs int

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

// idle reports whether the entry carries no state worth keeping at now:
// no failures, an expired lock, or failures older than window. e.mu must
// be held.
func (e *loginAttempts) idle(now time.Time, window time.Duration) bool {
	switch {
	case e.failures == 0:
		return true
	case !e.lockedUntil.IsZero():
		return !now.Before(e.lockedUntil)
	default:
		return now.Sub(e.lastFailure) >= window
	}
}

// Manager registers and authenticates users, owns their sessions and
// persists their profiles
type Manager struct {
	cfg     Config
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	registerMu sync.Mutex

	attemptsMu sync.Mutex
	attempts   map[string]*loginAttempts

	sessionsMu sync.RWMutex
	sessions   map[string]*model.Session

	profiles *cache.Cache[model.UserID, *model.UserProfile]
}

// New creates a new auth Manager
func New(cfg Config, storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Manager {
	defaults := DefaultConfig()
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaults.MaxLoginAttempts
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.PersistTimeout == 0 {
		cfg.PersistTimeout = defaults.PersistTimeout
	}
	return &Manager{
		cfg:      cfg,
		storage:  storage,
		clock:    clock,
		logger:   logger,
		attempts: make(map[string]*loginAttempts),
		sessions: make(map[string]*model.Session),
		profiles: cache.New[model.UserID, *model.UserProfile](),
	}
}

// Register creates a profile for username and issues a session for it
func (m *Manager) Register(ctx context.Context, username, password string) (*model.UserProfile, *model.Session, error) {
	if username == "" {
		return nil, nil, model.NewError(model.KindRegistration, "Username is required", nil)
	}
	if !ValidatePassword(password) {
		return nil, nil, model.NewError(model.KindRegistration, "Password does not meet requirements", map[string]any{
			"username": username,
		})
	}

	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.PersistTimeout)
	defer cancel()

	release, err := m.storage.Acquire(ctx, usernameLockKey(username))
	if err != nil {
		return nil, nil, m.registrationError(username, err)
	}
	defer release()

	_, err = m.storage.Load(ctx, storage.NamespaceUsernames, username)
	if err == nil {
		return nil, nil, model.NewError(model.KindRegistration, "Username already exists", map[string]any{
			"username": username,
		})
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, m.registrationError(username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cfg.BcryptCost)
	if err != nil {
		return nil, nil, m.registrationError(username, err)
	}

	profile := model.NewUserProfile(model.UserID(uuid.NewString()), username, m.clock.Now())
	profile.PasswordHash = string(hash)

	if err := m.saveProfile(ctx, profile); err != nil {
		return nil, nil, m.registrationError(username, err)
	}
	if err := m.storage.Save(ctx, storage.NamespaceUsernames, username, []byte(profile.UserID)); err != nil {
		return nil, nil, m.registrationError(username, err)
	}

	session, err := m.issueSession(profile)
	if err != nil {
		return nil, nil, m.registrationError(username, err)
	}

	m.logger.Info("user registered",
		slog.String("user_id", string(profile.UserID)),
		slog.String("username", username),
	)
	return profile.Clone(), session, nil
}

func (m *Manager) registrationError(username string, err error) error {
	m.logger.Error("registration failed", slog.String("username", username), slog.String("error", err.Error()))
	return model.WrapError(model.KindRegistration, "Failed to register user", err, map[string]any{
		"username": username,
	})
}

// Login checks username and password and issues a session. Repeated
// failures lock the account for the configured lockout duration; failures
// older than that duration are forgotten.
func (m *Manager) Login(ctx context.Context, username, password string) (*model.UserProfile, *model.Session, error) {
	entry := m.acquireAttempts(username)
	defer m.releaseAttempts(username, entry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := m.clock.Now()
	if now.Before(entry.lockedUntil) {
		return nil, nil, lockedError(username, entry.lockedUntil)
	}
	if entry.idle(now, m.cfg.LockoutDuration) {
		entry.failures = 0
		entry.lockedUntil = time.Time{}
	}

	profile, err := m.profileByUsername(ctx, username)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil, nil, m.failLogin(entry, username, now)
	case err != nil:
		return nil, nil, model.WrapError(model.KindAuthentication, "Authentication failed", err, map[string]any{
			"username": username,
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, nil, m.failLogin(entry, username, now)
	}

	entry.failures = 0
	session, err := m.issueSession(profile)
	if err != nil {
		return nil, nil, model.WrapError(model.KindAuthentication, "Authentication failed", err, map[string]any{
			"username": username,
		})
	}

	m.logger.Info("user logged in",
		slog.String("user_id", string(profile.UserID)),
		slog.String("username", username),
	)
	return profile, session, nil
}

func (m *Manager) acquireAttempts(username string) *loginAttempts {
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()
	entry, ok := m.attempts[username]
	if !ok {
		entry = &loginAttempts{}
		m.attempts[username] = entry
	}
	entry.refs++
	return entry
}

// releaseAttempts drops the caller's hold on entry and forgets it once no
// login holds it and it is idle. entry.mu must not be held.
func (m *Manager) releaseAttempts(username string, entry *loginAttempts) {
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()
	entry.refs--
	if entry.refs > 0 {
		return
	}
	entry.mu.Lock()
	idle := entry.idle(m.clock.Now(), m.cfg.LockoutDuration)
	entry.mu.Unlock()
	if idle {
		delete(m.attempts, username)
	}
}

// PruneLoginAttempts forgets failure counters that have gone idle: expired
// locks and failures older than the lockout duration. It returns how many
// were removed (call periodically).
func (m *Manager) PruneLoginAttempts() int {
	now := m.clock.Now()
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()

	removed := 0
	for username, entry := range m.attempts {
		if entry.refs > 0 {
			continue
		}
		entry.mu.Lock()
		idle := entry.idle(now, m.cfg.LockoutDuration)
		entry.mu.Unlock()
		if idle {
			delete(m.attempts, username)
			removed++
		}
	}
	return removed
}

// LoginAttemptCount returns the number of usernames with tracked failures
func (m *Manager) LoginAttemptCount() int {
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()
	return len(m.attempts)
}

// failLogin records a failed attempt; entry.mu must be held
func (m *Manager) failLogin(entry *loginAttempts, username string, now time.Time) error {
	entry.failures++
	entry.lastFailure = now
	if entry.failures >= m.cfg.MaxLoginAttempts {
		entry.lockedUntil = now.Add(m.cfg.LockoutDuration)
		m.logger.Warn("account locked",
			slog.String("username", username),
			slog.Int("failures", entry.failures),
		)
		return lockedError(username, entry.lockedUntil)
	}
	return model.NewError(model.KindAuthentication, "Invalid username or password", map[string]any{
		"username":           username,
		"attempts_remaining": m.cfg.MaxLoginAttempts - entry.failures,
	})
}

func lockedError(username string, until time.Time) error {
	return model.NewError(model.KindAuthentication, "Account locked", map[string]any{
		"username":     username,
		"locked_until": until,
	})
}

func (m *Manager) profileByUsername(ctx context.Context, username string) (*model.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PersistTimeout)
	defer cancel()

	id, err := m.storage.Load(ctx, storage.NamespaceUsernames, username)
	if err != nil {
		return nil, err
	}
	return m.loadProfile(ctx, model.UserID(id))
}

// issueSession signs a token for profile and registers the session
func (m *Manager) issueSession(profile *model.UserProfile) (*model.Session, error) {
	now := m.clock.Now()
	expires := expiryFor(now, m.cfg.SessionDuration)

	token, err := signToken(m.cfg.JWTSecret, profile, now, expires)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     token,
		UserID:    profile.UserID,
		Username:  profile.Username,
		CreatedAt: now,
		ExpiresAt: expires,
	}

	m.sessionsMu.Lock()
	m.sessions[token] = session
	m.sessionsMu.Unlock()

	c := *session
	return &c, nil
}

// ValidateSession reports whether token belongs to a live session
func (m *Manager) ValidateSession(token string) bool {
	_, err := m.Session(token)
	return err == nil
}

// Session returns the live session for token. Expired sessions are dropped.
func (m *Manager) Session(token string) (*model.Session, error) {
	m.sessionsMu.RLock()
	session, ok := m.sessions[token]
	m.sessionsMu.RUnlock()
	if !ok {
		return nil, invalidSessionError()
	}

	if session.Expired(m.clock.Now()) {
		m.sessionsMu.Lock()
		delete(m.sessions, token)
		m.sessionsMu.Unlock()
		return nil, invalidSessionError()
	}

	claims, err := parseToken(m.cfg.JWTSecret, token, m.clock.Now)
	if err != nil || claims.Subject != string(session.UserID) {
		return nil, model.WrapError(model.KindAuthentication, "Invalid or expired session", err, nil)
	}

	c := *session
	return &c, nil
}

func invalidSessionError() error {
	return model.NewError(model.KindAuthentication, "Invalid or expired session", nil)
}

// Logout revokes token and reports whether it was a known session
func (m *Manager) Logout(token string) bool {
	m.sessionsMu.Lock()
	session, ok := m.sessions[token]
	delete(m.sessions, token)
	m.sessionsMu.Unlock()

	if ok {
		m.logger.Info("user logged out", slog.String("user_id", string(session.UserID)))
	}
	return ok
}

// CleanExpiredSessions removes expired sessions and returns how many were
// removed (call periodically)
func (m *Manager) CleanExpiredSessions() int {
	now := m.clock.Now()
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	removed := 0
	for token, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// SessionCount returns the number of registered sessions
func (m *Manager) SessionCount() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessions)
}
