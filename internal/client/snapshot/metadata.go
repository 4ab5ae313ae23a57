package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
	"github.com/dmitrijs2005/plaquekeeper/internal/cryptox"
	"github.com/dmitrijs2005/plaquekeeper/internal/dbx"
)

const saltKey = "snapshot-salt"

// sealedMagic marks blobs encrypted with the passphrase key.
var sealedMagic = []byte("PKX1")

// MetadataStore saves snapshots into the SQLite metadata table. With a
// passphrase, blobs are sealed with AES-GCM under an Argon2id key whose salt
// lives next to them under "snapshot-salt".
type MetadataStore struct {
	db         *sql.DB
	repo       func(dbx.DBTX) metadata.Repository
	passphrase []byte

	mu   sync.Mutex
	key  []byte
	salt []byte
}

type Option func(*MetadataStore)

// WithPassphrase enables encryption at rest. An empty passphrase is ignored.
func WithPassphrase(p string) Option {
	return func(s *MetadataStore) {
		if p != "" {
			s.passphrase = []byte(p)
		}
	}
}

func NewMetadataStore(db *sql.DB, opts ...Option) *MetadataStore {
	s := &MetadataStore{db: db, repo: sqliteRepo}
	for _, o := range opts {
		o(s)
	}
	return s
}

func sqliteRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *MetadataStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := s.repo(s.db)
	data, err := repo.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sealed, ok := bytes.CutPrefix(data, sealedMagic)
	if !ok {
		return data, nil
	}
	if s.passphrase == nil {
		return nil, fmt.Errorf("load %s: %w", key, common.ErrSnapshotKeyUnavailable)
	}

	if s.key == nil {
		salt, err := repo.Get(ctx, saltKey)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s is sealed but no salt is stored", common.ErrSnapshotCorrupted, key)
		}
		if err != nil {
			return nil, err
		}
		s.useSalt(salt)
	}

	plain, err := cryptox.Open(s.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrSnapshotCorrupted, key, err)
	}
	return plain, nil
}

func (s *MetadataStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.passphrase == nil {
		return s.repo(s.db).Set(ctx, key, data)
	}

	newSalt := false
	if s.key == nil {
		salt, err := s.repo(s.db).Get(ctx, saltKey)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			salt = cryptox.NewSalt()
			newSalt = true
		case err != nil:
			return err
		}
		s.useSalt(salt)
	}

	sealed, err := cryptox.Seal(s.key, data)
	if err != nil {
		return err
	}
	blob := append(append([]byte(nil), sealedMagic...), sealed...)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if newSalt {
			if err := repo.Set(ctx, saltKey, s.salt); err != nil {
				return err
			}
		}
		return repo.Set(ctx, key, blob)
	})
	if err != nil && newSalt {
		s.key, s.salt = nil, nil
	}
	return err
}

func (s *MetadataStore) useSalt(salt []byte) {
	s.salt = salt
	s.key = cryptox.DeriveKey(s.passphrase, salt)
}
