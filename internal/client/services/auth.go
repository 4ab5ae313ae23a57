// Package services contains the client's stores. AuthStore owns the login
// session; DataStore owns users, plaques and the dark-mode flag. Both keep
// their whole state in memory and write a snapshot after every mutation.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/snapshot"
)

// AuthStore defines the authentication operations used by the CLI.
//
// Contract:
//   - Login: exact email and password match over the roster. A miss returns
//     false with a nil error and leaves the session alone.
//   - Register: always succeeds and signs the new account in.
//   - Logout: clears the session.
//
// Errors are only returned when the snapshot could not be written; the
// session is then left as it was.
type AuthStore interface {
	Login(ctx context.Context, email, password string) (bool, error)
	Register(ctx context.Context, in models.UserInput) (bool, error)
	Logout(ctx context.Context) error
	Session() models.Session
	CurrentUser() (models.User, bool)
}

// DefaultRoster returns the built-in accounts accepted by Login.
func DefaultRoster(createdAt time.Time) []models.User {
	return []models.User{
		{
			ID:        "1",
			Email:     "admin@transport.cd",
			Password:  "admin123",
			Role:      models.RoleAdmin,
			Nom:       "ADMIN",
			PostNom:   "SYSTEM",
			Prenom:    "Administrator",
			CreatedAt: createdAt,
		},
		{
			ID:        "2",
			Email:     "user@transport.cd",
			Password:  "user123",
			Role:      models.RoleUser,
			Nom:       "UTILISATEUR",
			PostNom:   "TEST",
			Prenom:    "Standard",
			CreatedAt: createdAt,
		},
	}
}

type authStore struct {
	opts   options
	snap   snapshot.Store
	roster []models.User

	mu    sync.Mutex
	state models.AuthState
}

// NewAuthStore builds an AuthStore and rehydrates it from the
// "auth-storage" snapshot, if one exists.
func NewAuthStore(ctx context.Context, snap snapshot.Store, opts ...Option) (AuthStore, error) {
	o := buildOptions(opts)
	s := &authStore{
		opts:   o,
		snap:   snap,
		roster: DefaultRoster(o.now().UTC()),
	}

	state, found, err := snapshot.Read[models.AuthState](ctx, snap, snapshot.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("rehydrate %s: %w", snapshot.AuthKey, err)
	}
	if found {
		s.state = state
		if !o.enroll {
			s.state.Enrolled = nil
		}
	}
	return s, nil
}

func (s *authStore) Login(ctx context.Context, email, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.match(email, password)
	s.opts.metrics.RecordLoginAttempt(ok)
	if !ok {
		s.opts.log.Info(ctx, "login rejected", "email", email)
		return false, nil
	}

	next := s.state
	next.Session = models.Session{User: &u, Authenticated: true}
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.opts.log.Info(ctx, "login", "user_id", u.ID, "role", u.Role)
	return true, nil
}

// match scans the whole roster so the comparison time does not depend on
// which entry matched.
func (s *authStore) match(email, password string) (models.User, bool) {
	var (
		found models.User
		ok    bool
	)
	for _, u := range s.candidates() {
		e := subtle.ConstantTimeCompare([]byte(u.Email), []byte(email))
		p := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password))
		if e&p == 1 && !ok {
			found, ok = u, true
		}
	}
	return found, ok
}

func (s *authStore) candidates() []models.User {
	if !s.opts.enroll {
		return s.roster
	}
	return slices.Concat(s.roster, s.state.Enrolled)
}

func (s *authStore) Register(ctx context.Context, in models.UserInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := in.NewUser(s.opts.newID(), s.opts.now().UTC())

	next := s.state
	next.Session = models.Session{User: &u, Authenticated: true}
	if s.opts.enroll {
		next.Enrolled = append(slices.Clone(s.state.Enrolled), u)
	}
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.opts.metrics.RecordRegistration()
	if s.opts.enroll {
		s.opts.log.Info(ctx, "account registered and enrolled", "user_id", u.ID)
	} else {
		s.opts.log.Warn(ctx, "account registered for this session only, it cannot log in again after logout",
			"user_id", u.ID, "email", u.Email)
	}
	return true, nil
}

func (s *authStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Session = models.Session{}
	return s.commit(ctx, next)
}

func (s *authStore) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state.Session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *authStore) CurrentUser() (models.User, bool) {
	sess := s.Session()
	if !sess.Authenticated || sess.User == nil {
		return models.User{}, false
	}
	return *sess.User, true
}

// commit persists next and makes it current. Callers hold s.mu.
func (s *authStore) commit(ctx context.Context, next models.AuthState) error {
	err := snapshot.Write(ctx, s.snap, snapshot.AuthKey, next)
	s.opts.metrics.RecordSnapshotWrite(snapshot.AuthKey, err)
	if err != nil {
		s.opts.log.Error(ctx, "auth snapshot write failed", "err", err)
		return err
	}
	s.state = next
	return nil
}
