// Package mysqlstore persists ID property layers in MySQL.
//
// Each row holds one layer keyed by state.Ref.Identifier(). The group is
// stored in the idprop JSON form, so ghost flags and UI data survive a round
// trip.
package mysqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/samborkent/uuidv7"

	"github.com/goliatone/go-rna/idprop"
	"github.com/goliatone/go-rna/pkg/state"
)

const (
	// DefaultTable is the table used when no WithTable option is given.
	DefaultTable = "rna_state"
	// RequestTimeout bounds every statement issued by the store.
	RequestTimeout = 30 * time.Second
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

var _ state.Store = (*Store)(nil)

// Store is a state.Store backed by a MySQL table.
type Store struct {
	DB    *sql.DB
	table string
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// WithClock overrides the clock used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the server described by dsn. Times are parsed into UTC
// regardless of the DSN settings.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: connector for %s: %w", cfg.Addr, err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysqlstore: ping %s: %w", cfg.Addr, err)
	}
	return db, nil
}

// New returns a store on db. Call Setup before first use.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{DB: db, table: DefaultTable, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if db == nil {
		return nil, errors.New("mysqlstore: db is nil")
	}
	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("mysqlstore: invalid table name %q", s.table)
	}
	return s, nil
}

// Table returns the table name.
func (s *Store) Table() string {
	return s.table
}

// Setup creates the table. A destructive setup drops it first.
func (s *Store) Setup(ctx context.Context, isDestructive bool) error {
	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	if isDestructive {
		if _, err := s.DB.ExecContext(sqlctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", s.table)); err != nil {
			return fmt.Errorf("mysqlstore: drop table %s: %w", s.table, err)
		}
	}
	_, err := s.DB.ExecContext(sqlctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s`"+` (
			state_key    VARCHAR(255) NOT NULL,
			library      VARCHAR(120) NOT NULL,
			name         VARCHAR(120) NOT NULL,
			snapshot_id  VARCHAR(40)  NOT NULL,
			etag         VARCHAR(64)  NOT NULL,
			updated_at   DATETIME(6)  NOT NULL,
			extra        JSON         NULL,
			payload      JSON         NOT NULL,
			PRIMARY KEY (state_key)
		) ENGINE = InnoDB;
	`, s.table))
	if err != nil {
		return fmt.Errorf("mysqlstore: create table %s: %w", s.table, err)
	}
	return nil
}

// Load implements state.Store.
func (s *Store) Load(ctx context.Context, ref state.Ref) (*idprop.Property, state.Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, state.Meta{}, false, err
	}

	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	row := s.DB.QueryRowContext(sqlctx, fmt.Sprintf(
		"SELECT snapshot_id, etag, updated_at, extra, payload FROM `%s` WHERE state_key = ?", s.table), key)

	var (
		meta    state.Meta
		extra   []byte
		payload []byte
	)
	if err := row.Scan(&meta.SnapshotID, &meta.ETag, &meta.UpdatedAt, &extra, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, state.Meta{}, false, nil
		}
		return nil, state.Meta{}, false, fmt.Errorf("mysqlstore: load %s: %w", key, err)
	}

	group, err := decodeGroup(payload)
	if err != nil {
		return nil, state.Meta{}, false, fmt.Errorf("mysqlstore: load %s: %w", key, err)
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &meta.Extra); err != nil {
			return nil, state.Meta{}, false, fmt.Errorf("mysqlstore: load %s extra: %w", key, err)
		}
	}
	return group, meta, true, nil
}

// Save implements state.Store. Missing ids are generated the same way as
// state.MemoryStore does.
func (s *Store) Save(ctx context.Context, ref state.Ref, group *idprop.Property, meta state.Meta) (state.Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return state.Meta{}, err
	}
	if err := state.ValidateGroup(group); err != nil {
		return state.Meta{}, err
	}

	payload, err := json.Marshal(group)
	if err != nil {
		return state.Meta{}, fmt.Errorf("mysqlstore: encode %s: %w", key, err)
	}
	var extra []byte
	if meta.Extra != nil {
		if extra, err = json.Marshal(meta.Extra); err != nil {
			return state.Meta{}, fmt.Errorf("mysqlstore: encode %s extra: %w", key, err)
		}
	}

	out := meta
	if out.SnapshotID == "" {
		out.SnapshotID = uuidv7.New().String()
	}
	if out.ETag == "" {
		out.ETag = out.SnapshotID
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = s.now().UTC()
	}

	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	_, err = s.DB.ExecContext(sqlctx, fmt.Sprintf(`
		INSERT INTO `+"`%s`"+` (state_key, library, name, snapshot_id, etag, updated_at, extra, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			snapshot_id = VALUES(snapshot_id), etag = VALUES(etag), updated_at = VALUES(updated_at),
			extra = VALUES(extra), payload = VALUES(payload)
	`, s.table), key, ref.Library, ref.Name, out.SnapshotID, out.ETag, out.UpdatedAt, nullableJSON(extra), payload)
	if err != nil {
		return state.Meta{}, fmt.Errorf("mysqlstore: save %s: %w", key, describe(err))
	}
	return out, nil
}

// Delete removes the layer stored for ref.
func (s *Store) Delete(ctx context.Context, ref state.Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	if _, err := s.DB.ExecContext(sqlctx, fmt.Sprintf("DELETE FROM `%s` WHERE state_key = ?", s.table), key); err != nil {
		return fmt.Errorf("mysqlstore: delete %s: %w", key, err)
	}
	return nil
}

func decodeGroup(payload []byte) (*idprop.Property, error) {
	var group idprop.Property
	if err := json.Unmarshal(payload, &group); err != nil {
		return nil, err
	}
	if err := state.ValidateGroup(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

func nullableJSON(raw []byte) any {
	if raw == nil {
		return nil
	}
	return raw
}

// ER_DATA_TOO_LONG
const errDataTooLong = 1406

func describe(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDataTooLong {
		return fmt.Errorf("value exceeds column size: %w", err)
	}
	return err
}
