package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/qr"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/snapshot"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

// maxPlateAttempts bounds GenerateUniquePlateNumber.
const maxPlateAttempts = 64

// QRPolicy tells a plaque mutation what to do when the QR image cannot be
// generated.
type QRPolicy int

const (
	// QRRequired drops the add, or aborts the whole update, and returns an
	// error wrapping common.ErrQREncode.
	QRRequired QRPolicy = iota
	// QROptional keeps the record with an empty QRCode. The failure is only
	// reported through PlaqueOutcome.QR.
	QROptional
)

func (p QRPolicy) String() string {
	if p == QROptional {
		return "optional"
	}
	return "required"
}

// PlaqueOutcome reports what a plaque mutation did.
type PlaqueOutcome struct {
	// Plaque is the record as stored. Zero when nothing was stored.
	Plaque models.Plaque
	// Found is false when an update targeted an unknown id.
	Found bool
	// Stored is true when the mutation was committed.
	Stored bool
	// QR is the encode attempt, if one was made.
	QR qr.Result
}

// DataStore owns staff users, plaques and the dark-mode flag.
//
// Lookups that miss are not errors: updates and deletes of unknown ids
// return false (or an outcome with Found unset) and change nothing. Returned
// errors come from snapshot writes, wrapping common.ErrPersist, or from QR
// generation under QRRequired, wrapping common.ErrQREncode. On error the
// in-memory state is unchanged.
type DataStore interface {
	AddUser(ctx context.Context, in models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (bool, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	Users() []models.User
	User(id string) (models.User, bool)

	AddPlaque(ctx context.Context, in models.PlaqueInput, policy QRPolicy) (PlaqueOutcome, error)
	UpdatePlaque(ctx context.Context, id string, patch models.PlaquePatch, policy QRPolicy) (PlaqueOutcome, error)
	DeletePlaque(ctx context.Context, id string) (bool, error)
	Plaques() []models.Plaque
	Plaque(id string) (models.Plaque, bool)

	GeneratePlateNumber() string
	GenerateUniquePlateNumber() (string, error)

	ToggleDarkMode(ctx context.Context) (bool, error)
	DarkMode() bool

	Stats(now time.Time) Stats
}

type dataStore struct {
	opts options
	snap snapshot.Store
	enc  qr.Encoder

	// plaqueMu serialises plaque mutations across encode, merge and persist.
	plaqueMu sync.Mutex

	mu    sync.Mutex
	state models.AppState
}

// NewDataStore builds a DataStore and rehydrates it from the "app-storage"
// snapshot, if one exists.
func NewDataStore(ctx context.Context, snap snapshot.Store, enc qr.Encoder, opts ...Option) (DataStore, error) {
	s := &dataStore{
		opts: buildOptions(opts),
		snap: snap,
		enc:  enc,
	}

	state, found, err := snapshot.Read[models.AppState](ctx, snap, snapshot.AppKey)
	if err != nil {
		return nil, fmt.Errorf("rehydrate %s: %w", snapshot.AppKey, err)
	}
	if found {
		s.state = state.Clone()
	}
	s.observe()
	return s, nil
}

// Users

func (s *dataStore) AddUser(ctx context.Context, in models.UserInput) (models.User, error) {
	u := in.NewUser(s.opts.newID(), s.opts.now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Users = append(next.Users, u)
	if err := s.commit(ctx, next, "user", "add"); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *dataStore) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return false, nil
	}

	next := s.state.Clone()
	next.Users[i] = patch.Apply(next.Users[i])
	if err := s.commit(ctx, next, "user", "update"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *dataStore) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return false, nil
	}

	next := s.state.Clone()
	next.Users = slices.Delete(next.Users, i, i+1)
	if err := s.commit(ctx, next, "user", "delete"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *dataStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Users)
}

func (s *dataStore) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, false
	}
	return s.state.Users[i], true
}

// Plaques

func (s *dataStore) AddPlaque(ctx context.Context, in models.PlaqueInput, policy QRPolicy) (PlaqueOutcome, error) {
	s.plaqueMu.Lock()
	defer s.plaqueMu.Unlock()

	out := PlaqueOutcome{Found: true}
	out.QR = s.encode(ctx, in.Numero, policy)
	if !out.QR.OK() && policy == QRRequired {
		return out, fmt.Errorf("add plaque %s: %w: %w", in.Numero, common.ErrQREncode, out.QR.Err)
	}

	p := in.NewPlaque(s.opts.newID(), s.opts.now().UTC(), out.QR.Image)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Plaques = append(next.Plaques, p)
	if err := s.commit(ctx, next, "plaque", "add"); err != nil {
		return out, err
	}
	out.Plaque, out.Stored = p, true
	return out, nil
}

func (s *dataStore) UpdatePlaque(ctx context.Context, id string, patch models.PlaquePatch, policy QRPolicy) (PlaqueOutcome, error) {
	s.plaqueMu.Lock()
	defer s.plaqueMu.Unlock()

	var out PlaqueOutcome
	if _, ok := s.Plaque(id); !ok {
		return out, nil
	}
	out.Found = true

	if patch.Numero != nil {
		out.QR = s.encode(ctx, *patch.Numero, policy)
		if !out.QR.OK() && policy == QRRequired {
			return out, fmt.Errorf("update plaque %s: %w: %w", id, common.ErrQREncode, out.QR.Err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Plaque writers are serialised, so the index found here is still the
	// record checked above.
	i := slices.IndexFunc(s.state.Plaques, func(p models.Plaque) bool { return p.ID == id })
	next := s.state.Clone()
	p := patch.Apply(next.Plaques[i])
	if patch.Numero != nil {
		p.QRCode = out.QR.Image
	}
	next.Plaques[i] = p

	if err := s.commit(ctx, next, "plaque", "update"); err != nil {
		return out, err
	}
	out.Plaque, out.Stored = p, true
	return out, nil
}

func (s *dataStore) DeletePlaque(ctx context.Context, id string) (bool, error) {
	s.plaqueMu.Lock()
	defer s.plaqueMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Plaques, func(p models.Plaque) bool { return p.ID == id })
	if i < 0 {
		return false, nil
	}

	next := s.state.Clone()
	next.Plaques = slices.Delete(next.Plaques, i, i+1)
	if err := s.commit(ctx, next, "plaque", "delete"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *dataStore) Plaques() []models.Plaque {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Plaques)
}

func (s *dataStore) Plaque(id string) (models.Plaque, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Plaques, func(p models.Plaque) bool { return p.ID == id })
	if i < 0 {
		return models.Plaque{}, false
	}
	return s.state.Plaques[i], true
}

// encode runs the QR encoder and reports failures. It never holds s.mu.
func (s *dataStore) encode(ctx context.Context, numero string, policy QRPolicy) qr.Result {
	res := qr.Run(ctx, s.enc, numero)
	if !res.OK() {
		s.opts.metrics.RecordQREncodeFailure()
		s.opts.log.Warn(ctx, "qr code generation failed", "numero", numero, "policy", policy, "err", res.Err)
	}
	return res
}

// Plate numbers

func (s *dataStore) GeneratePlateNumber() string {
	return s.opts.plates.Generate()
}

// GenerateUniquePlateNumber draws until the number is not used by a stored
// plaque.
func (s *dataStore) GenerateUniquePlateNumber() (string, error) {
	s.mu.Lock()
	taken := make(map[string]struct{}, len(s.state.Plaques))
	for _, p := range s.state.Plaques {
		taken[p.Numero] = struct{}{}
	}
	s.mu.Unlock()

	for range maxPlateAttempts {
		n := s.opts.plates.Generate()
		if _, dup := taken[n]; !dup {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", common.ErrPlateNumbersExhausted, maxPlateAttempts)
}

// Settings

func (s *dataStore) ToggleDarkMode(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.DarkMode = !next.DarkMode
	if err := s.commit(ctx, next, "settings", "toggle_dark_mode"); err != nil {
		return s.state.DarkMode, err
	}
	return next.DarkMode, nil
}

func (s *dataStore) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DarkMode
}

// commit persists next and makes it current. Callers hold s.mu.
func (s *dataStore) commit(ctx context.Context, next models.AppState, entity, op string) error {
	err := snapshot.Write(ctx, s.snap, snapshot.AppKey, next)
	s.opts.metrics.RecordSnapshotWrite(snapshot.AppKey, err)
	if err != nil {
		s.opts.log.Error(ctx, "app snapshot write failed", "entity", entity, "op", op, "err", err)
		return err
	}
	s.state = next
	s.opts.metrics.RecordMutation(entity, op)
	s.observe()
	s.opts.log.Debug(ctx, "store mutation", "entity", entity, "op", op)
	return nil
}

func (s *dataStore) observe() {
	s.opts.metrics.SetRecords("user", len(s.state.Users))
	s.opts.metrics.SetRecords("plaque", len(s.state.Plaques))
}
