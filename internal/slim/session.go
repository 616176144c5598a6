package slim

import (
	"fmt"
	"strings"
)

// SignUpRequest carries the raw sign-up form.
type SignUpRequest struct {
	Username  string
	Password  string
	Age       int
	Gender    Gender
	HeightCm  float64
	WeightLbs float64
}

// SessionManager owns the active user and the logbook that belongs to them.
// Exactly one session is active, or none. The logbook is only reachable
// through the manager and is rebuilt from storage whenever the session
// identity changes.
type SessionManager struct {
	creds    CredentialStore
	logs     LogRepository
	sessions SessionStore
	hasher   PasswordHasher
	clock    Clock
	logger   Logger

	profile *UserProfile
	book    *Logbook
}

// NewSessionManager creates a manager with no active session.
func NewSessionManager(creds CredentialStore, logs LogRepository, sessions SessionStore, hasher PasswordHasher, clock Clock, logger Logger) *SessionManager {
	return &SessionManager{
		creds:    creds,
		logs:     logs,
		sessions: sessions,
		hasher:   hasher,
		clock:    clock,
		logger:   logger,
	}
}

// SignUp creates a new account, computes its calorie goal and logs it in
// with an empty history.
func (m *SessionManager) SignUp(req SignUpRequest) (*UserProfile, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if req.Password == "" {
		return nil, invalid("password", "is required")
	}

	existing, err := m.creds.FindAccount(username)
	if err != nil {
		return nil, fmt.Errorf("checking for existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	limit, err := CalorieTarget(req.WeightLbs, req.HeightCm, req.Age, req.Gender)
	if err != nil {
		return nil, err
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	profile := UserProfile{
		Username:          username,
		Age:               req.Age,
		Gender:            req.Gender,
		HeightCm:          req.HeightCm,
		CurrentWeight:     req.WeightLbs,
		TargetWeight:      DefaultTargetWeight(req.WeightLbs),
		DailyCalorieLimit: limit,
		ActivityLevel:     ActivitySedentary,
	}
	if err := m.creds.CreateAccount(&Account{Username: username, PasswordHash: hash, Profile: profile}); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	book, err := NewEmptyLogbook(username, m.logs, m.clock)
	if err != nil {
		return nil, err
	}
	if err := m.activate(&profile, book); err != nil {
		return nil, err
	}

	m.logger.Info("user signed up", "username", username, "daily_limit", limit)
	return m.copyProfile(), nil
}

// LogIn verifies the credentials and loads the user's persisted logs,
// replacing whatever was in memory.
func (m *SessionManager) LogIn(username, password string) (*UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "is required")
	}

	account, err := m.creds.FindAccount(username)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	ok, err := m.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		m.logger.Warn("login rejected", "username", username)
		return nil, ErrBadCredential
	}

	if err := m.open(&account.Profile); err != nil {
		return nil, err
	}

	m.logger.Info("user logged in", "username", username)
	return m.copyProfile(), nil
}

// Resume reactivates the session recorded by a previous invocation, if any.
// It reports whether a session is now active.
func (m *SessionManager) Resume() (bool, error) {
	username, err := m.sessions.ActiveSession()
	if err != nil {
		return false, fmt.Errorf("reading active session: %w", err)
	}
	if username == "" {
		return false, nil
	}

	account, err := m.creds.FindAccount(username)
	if err != nil {
		return false, fmt.Errorf("finding user: %w", err)
	}
	if account == nil {
		// The account behind a remembered session is gone; forget it.
		if err := m.sessions.ClearActiveSession(); err != nil {
			return false, fmt.Errorf("clearing stale session: %w", err)
		}
		return false, nil
	}

	if err := m.open(&account.Profile); err != nil {
		return false, err
	}
	return true, nil
}

// LogOut ends the session and drops the in-memory logs. Persisted data is kept.
func (m *SessionManager) LogOut() error {
	if m.profile != nil {
		m.logger.Info("user logged out", "username", m.profile.Username)
	}
	m.profile = nil
	m.book = nil
	if err := m.sessions.ClearActiveSession(); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}

// Current returns a copy of the active profile.
func (m *SessionManager) Current() (*UserProfile, error) {
	if m.profile == nil {
		return nil, ErrNoSession
	}
	return m.copyProfile(), nil
}

// Logbook returns the active user's logbook.
func (m *SessionManager) Logbook() (*Logbook, error) {
	if m.book == nil {
		return nil, ErrNoSession
	}
	return m.book, nil
}

// UpdateWeight records a weight check-in on the profile, both in memory and
// in the credential store. The calorie limit is not recomputed.
func (m *SessionManager) UpdateWeight(weight float64) error {
	if m.profile == nil {
		return ErrNoSession
	}
	if !(weight > 0) {
		return invalid("weight", "must be a positive number")
	}

	updated := *m.profile
	updated.CurrentWeight = weight
	if err := m.creds.UpdateProfile(&updated); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	m.profile = &updated
	return nil
}

// open loads the logbook for profile and makes it the active session.
func (m *SessionManager) open(profile *UserProfile) error {
	book, err := OpenLogbook(profile.Username, m.logs, m.clock)
	if err != nil {
		return err
	}
	return m.activate(profile, book)
}

func (m *SessionManager) activate(profile *UserProfile, book *Logbook) error {
	if err := m.sessions.SetActiveSession(profile.Username); err != nil {
		return fmt.Errorf("recording active session: %w", err)
	}
	p := *profile
	m.profile = &p
	m.book = book
	return nil
}

func (m *SessionManager) copyProfile() *UserProfile {
	p := *m.profile
	return &p
}
