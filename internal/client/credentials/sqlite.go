package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/babeledit/internal/client/migrations"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
	"github.com/dmitrijs2005/babeledit/internal/cryptox"
	"github.com/dmitrijs2005/babeledit/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldRole         = "role"

	metaSalt = "salt"
	saltSize = 16
)

// SQLiteStore persists the session in a local SQLite database.
//
// When opened with a non-empty passphrase every value is sealed with AES-GCM
// under a key derived from the passphrase and a random per-database salt.
// Opening a sealed database with another passphrase makes Get fail with
// common.ErrSealedValue.
type SQLiteStore struct {
	db  *sql.DB
	key []byte
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// OpenSQLiteStore opens (creating if needed) the session database at dsn.
func OpenSQLiteStore(ctx context.Context, dsn string, passphrase []byte) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	salt, err := s.loadSalt(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	switch {
	case len(passphrase) > 0:
		if salt == nil {
			if salt, err = s.createSalt(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		s.key = cryptox.DeriveKey(passphrase, salt)
	case salt != nil:
		_ = db.Close()
		return nil, fmt.Errorf("session database is sealed, passphrase required: %w", common.ErrSealedValue)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// loadSalt returns the stored salt, or nil when the database was never sealed.
func (s *SQLiteStore) loadSalt(ctx context.Context) ([]byte, error) {
	salt, found, err := dbx.Lookup[[]byte](ctx, s.db, `SELECT value FROM store_meta WHERE name = ?`, metaSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}
	if !found {
		return nil, nil
	}
	return salt, nil
}

func (s *SQLiteStore) createSalt(ctx context.Context) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO store_meta (name, value) VALUES (?, ?)`, metaSalt, salt); err != nil {
		return nil, fmt.Errorf("failed to store salt: %w", err)
	}
	return salt, nil
}

func (s *SQLiteStore) Get(ctx context.Context) (models.Session, error) {
	var sess models.Session

	stored, err := dbx.KeyValues(ctx, s.db, `SELECT name, value FROM session`)
	if err != nil {
		return sess, fmt.Errorf("failed to read session: %w", err)
	}

	targets := map[string]*string{
		fieldAccessToken:  &sess.AccessToken,
		fieldRefreshToken: &sess.RefreshToken,
		fieldRole:         &sess.Role,
	}
	for name, raw := range stored {
		dst, ok := targets[name]
		if !ok {
			continue
		}
		value, err := s.open(raw)
		if err != nil {
			return models.Session{}, fmt.Errorf("session[%s]: %w", name, err)
		}
		*dst = value
	}
	return sess, nil
}

func (s *SQLiteStore) Set(ctx context.Context, sess models.Session) error {
	fields := map[string]string{
		fieldAccessToken:  sess.AccessToken,
		fieldRefreshToken: sess.RefreshToken,
		fieldRole:         sess.Role,
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		for name, value := range fields {
			if value == "" {
				continue
			}
			raw, err := s.seal(value)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO session (name, value) VALUES (?, ?)`, name, raw); err != nil {
				return fmt.Errorf("failed to set session[%s]: %w", name, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) seal(value string) ([]byte, error) {
	if s.key == nil {
		return []byte(value), nil
	}
	return cryptox.Seal([]byte(value), s.key)
}

func (s *SQLiteStore) open(raw []byte) (string, error) {
	if s.key == nil {
		return string(raw), nil
	}
	plain, err := cryptox.Open(raw, s.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
