package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLite implements code storage and verification log with SQLite database
type SQLite struct {
	db      *sql.DB
	lock    sync.RWMutex
	done    chan struct{}
	cleanWg sync.WaitGroup
}

// NewInMemory creates an ephemeral in-memory SQLite store.
// Each call creates an isolated database using a unique URI.
func NewInMemory(retention time.Duration) *SQLite {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	uri := "file:" + hex.EncodeToString(buf[:]) + "?mode=memory&cache=shared"
	s, err := NewSQLite(uri, retention)
	if err != nil {
		panic("failed to create in-memory sqlite: " + err.Error())
	}
	return s
}

// NewSQLite creates a persistent SQLite-based store.
// Verification events older than retention are pruned periodically, zero retention keeps them forever.
func NewSQLite(dbFile string, retention time.Duration) (*SQLite, error) {
	log.Printf("[INFO] sqlite (%s) store", dbFile)

	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", "PRAGMA busy_timeout=5000"} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS codes (
			id TEXT PRIMARY KEY,
			short_id TEXT NOT NULL,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			token TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			scans INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_codes_short_id ON codes(short_id);
		CREATE INDEX IF NOT EXISTS idx_codes_owner ON codes(owner, created_at);
		CREATE TABLE IF NOT EXISTS verifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code_id TEXT NOT NULL DEFAULT '',
			short_id TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			client TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_verifications_code ON verifications(code_id);
		CREATE INDEX IF NOT EXISTS idx_verifications_created ON verifications(created_at);
	`
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	result := &SQLite{db: db, done: make(chan struct{})}
	if retention > 0 {
		result.activateCleaner(retention)
	}
	return result, nil
}

// Save stores a new code
func (s *SQLite) Save(ctx context.Context, code *Code) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if code.Status == "" {
		code.Status = StatusActive
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO codes (id, short_id, owner, name, kind, token, status, scans, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		code.ID, code.ShortID, code.Owner, code.Name, code.Kind, code.Token, string(code.Status), code.Scans, code.CreatedAt.UnixMilli(),
	)
	if err != nil {
		log.Printf("[ERROR] failed to save code: %v", err)
		return ErrSaveRejected
	}
	log.Printf("[DEBUG] saved code %s for %s", code.ShortID, code.Owner)
	return nil
}

const codeFields = "id, short_id, owner, name, kind, token, status, scans, created_at"

// List returns all codes of owner, newest first
func (s *SQLite) List(ctx context.Context, owner string) ([]Code, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+codeFields+" FROM codes WHERE owner = ? ORDER BY created_at DESC, rowid DESC", owner)
	if err != nil {
		log.Printf("[ERROR] failed to list codes: %v", err)
		return nil, ErrLoadRejected
	}
	defer rows.Close()

	res := []Code{}
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}
	return res, nil
}

// LoadByShortID returns the only code with shortID.
// Short ids are not unique, a collision gives ErrAmbiguous rather than a guess.
func (s *SQLite) LoadByShortID(ctx context.Context, shortID string) (*Code, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+codeFields+" FROM codes WHERE short_id = ? LIMIT 2", shortID)
	if err != nil {
		log.Printf("[ERROR] failed to load code: %v", err)
		return nil, ErrLoadRejected
	}
	defer rows.Close()

	var found []*Code
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}

	switch len(found) {
	case 0:
		log.Printf("[DEBUG] not found %s", shortID)
		return nil, ErrNotFound
	case 1:
		return found[0], nil
	default:
		log.Printf("[WARN] short id collision on %s", shortID)
		return nil, ErrAmbiguous
	}
}

// Resolve returns the token of an active code with shortID
func (s *SQLite) Resolve(ctx context.Context, shortID string) (string, error) {
	c, err := s.LoadByShortID(ctx, shortID)
	if err != nil {
		return "", err
	}
	if c.Status != StatusActive {
		log.Printf("[DEBUG] code %s is %s", shortID, c.Status)
		return "", ErrNotFound
	}
	return c.Token, nil
}

// IncScans atomically increments the scans count of code id and returns new value
func (s *SQLite) IncScans(ctx context.Context, id string) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx, "UPDATE codes SET scans = scans + 1 WHERE id = ? RETURNING scans", id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		log.Printf("[ERROR] failed to increment scans: %v", err)
		return 0, ErrLoadRejected
	}
	return count, nil
}

// SetStatus changes status of the owner's code
func (s *SQLite) SetStatus(ctx context.Context, owner, id string, status Status) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE codes SET status = ? WHERE id = ? AND owner = ?", string(status), id, owner)
	if err != nil {
		log.Printf("[ERROR] failed to set status: %v", err)
		return ErrSaveRejected
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("[INFO] code %s set to %s", id, status)
	return nil
}

// LogVerification appends ev to the verification log
func (s *SQLite) LogVerification(ctx context.Context, ev *VerificationEvent) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO verifications (code_id, short_id, outcome, client, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.CodeID, ev.ShortID, ev.Outcome, ev.Client, ev.CreatedAt.UnixMilli(),
	)
	if err != nil {
		log.Printf("[ERROR] failed to log verification: %v", err)
		return ErrSaveRejected
	}
	ev.ID, _ = res.LastInsertId()
	return nil
}

// ListVerifications returns up to limit latest verification events of the owner's codes
func (s *SQLite) ListVerifications(ctx context.Context, owner string, limit int) ([]VerificationEvent, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.code_id, v.short_id, v.outcome, v.client, v.created_at
		FROM verifications v JOIN codes c ON c.id = v.code_id
		WHERE c.owner = ?
		ORDER BY v.created_at DESC, v.id DESC LIMIT ?`, owner, limit)
	if err != nil {
		log.Printf("[ERROR] failed to list verifications: %v", err)
		return nil, ErrLoadRejected
	}
	defer rows.Close()

	res := []VerificationEvent{}
	for rows.Next() {
		var ev VerificationEvent
		var created int64
		if err := rows.Scan(&ev.ID, &ev.CodeID, &ev.ShortID, &ev.Outcome, &ev.Client, &created); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(created)
		res = append(res, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return res, nil
}

// VerificationStats counts verification events of the owner's codes by outcome
func (s *SQLite) VerificationStats(ctx context.Context, owner string) (map[string]int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.outcome, COUNT(*)
		FROM verifications v JOIN codes c ON c.id = v.code_id
		WHERE c.owner = ?
		GROUP BY v.outcome`, owner)
	if err != nil {
		log.Printf("[ERROR] failed to count verifications: %v", err)
		return nil, ErrLoadRejected
	}
	defer rows.Close()

	res := map[string]int{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan verification stats: %w", err)
		}
		res[outcome] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification stats: %w", err)
	}
	return res, nil
}

// Close closes the database connection and stops the cleaner goroutine
func (s *SQLite) Close() error {
	close(s.done)
	s.cleanWg.Wait()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// activateCleaner prunes verification events older than retention
func (s *SQLite) activateCleaner(retention time.Duration) {
	every := min(retention, time.Hour)
	log.Printf("[INFO] cleaner activated, every %v, retention %v", every, retention)

	s.cleanWg.Add(1)
	ticker := time.NewTicker(every)
	go func() {
		defer s.cleanWg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				threshold := time.Now().Add(-retention).UnixMilli()
				s.lock.Lock()
				result, err := s.db.ExecContext(context.Background(), "DELETE FROM verifications WHERE created_at < ?", threshold)
				s.lock.Unlock()
				if err != nil {
					log.Printf("[WARN] cleanup failed: %v", err)
					continue
				}
				if count, _ := result.RowsAffected(); count > 0 {
					log.Printf("[INFO] cleaned %d old verification events", count)
				}
			}
		}
	}()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCode(row scanner) (*Code, error) {
	var c Code
	var status string
	var created int64
	if err := row.Scan(&c.ID, &c.ShortID, &c.Owner, &c.Name, &c.Kind, &c.Token, &status, &c.Scans, &created); err != nil {
		return nil, fmt.Errorf("scan code: %w", err)
	}
	c.Status = Status(status)
	c.CreatedAt = time.UnixMilli(created)
	return &c, nil
}
