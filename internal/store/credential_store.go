package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// ErrIdentifierExists is returned by InsertIfAbsent when a record with
// the same identifier is already present.
var ErrIdentifierExists = errors.New("identifier already exists")

// CredentialStore persists locally known users (one row per
// identifier, see model.Credential).
type CredentialStore struct{ DB *sql.DB }

func NewCredentialStore(db *sql.DB) *CredentialStore { return &CredentialStore{DB: db} }

const credentialColumns = "identifier,user_id,full_name,phone,password_hash,role,is_active,last_sync_at,synced,address,date_of_birth"

// ByIdentifier fetches a credential by its normalized identifier.
// Returns sql.ErrNoRows when the identifier is unknown.
func (s *CredentialStore) ByIdentifier(ctx context.Context, identifier string) (model.Credential, error) {
	identifier = Normalize(identifier)
	row := s.DB.QueryRowContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE identifier=? LIMIT 1", identifier)
	return scanCredential(row)
}

// ByRole lists all credentials with the given role.
func (s *CredentialStore) ByRole(ctx context.Context, role model.Role) ([]model.Credential, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE role=?", string(role))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectCredentials(rows)
}

// InsertIfAbsent inserts a new credential and returns
// ErrIdentifierExists if one with the same identifier already exists.
func (s *CredentialStore) InsertIfAbsent(ctx context.Context, c model.Credential) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO credentials ("+credentialColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		Normalize(c.Identifier), c.UserID, c.FullName, c.Phone, c.PasswordHash, string(c.Role),
		boolInt(c.IsActive), timeUnix(c.LastSyncAt), boolInt(c.SyncedWithServer), c.Address, c.DateOfBirth)
	if err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "UNIQUE") {
			return ErrIdentifierExists
		}
		return err
	}
	return nil
}

// Update replaces every mutable field of an existing record.  Returns
// sql.ErrNoRows when the identifier is unknown.
func (s *CredentialStore) Update(ctx context.Context, c model.Credential) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE credentials SET user_id=?, full_name=?, phone=?, password_hash=?, role=?,
		 is_active=?, last_sync_at=?, synced=?, address=?, date_of_birth=? WHERE identifier=?`,
		c.UserID, c.FullName, c.Phone, c.PasswordHash, string(c.Role),
		boolInt(c.IsActive), timeUnix(c.LastSyncAt), boolInt(c.SyncedWithServer),
		c.Address, c.DateOfBirth, Normalize(c.Identifier))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Upsert inserts the credential or, if the identifier is taken,
// replaces the existing row.  Used after every successful remote login
// to keep the local record fresh.
func (s *CredentialStore) Upsert(ctx context.Context, c model.Credential) error {
	if err := s.InsertIfAbsent(ctx, c); err != nil {
		if errors.Is(err, ErrIdentifierExists) {
			return s.Update(ctx, c)
		}
		return err
	}
	return nil
}

// Unsynced enumerates credentials created while offline
// (synced=false), oldest first.
func (s *CredentialStore) Unsynced(ctx context.Context) ([]model.Credential, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE synced=0 ORDER BY last_sync_at ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectCredentials(rows)
}

// MarkSynced flips the synced flag and stamps the sync time.
func (s *CredentialStore) MarkSynced(ctx context.Context, identifier string, at time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE credentials SET synced=1, last_sync_at=? WHERE identifier=?",
		at.UTC().Unix(), Normalize(identifier))
	return err
}

// Normalize lower-cases and trims an identifier so lookups are
// case-insensitive regardless of how the kiosk UI submitted it.
func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCredential(r rowScanner) (model.Credential, error) {
	var (
		c        model.Credential
		active   int
		synced   int
		syncUnix int64
		role     string
	)
	err := r.Scan(&c.Identifier, &c.UserID, &c.FullName, &c.Phone, &c.PasswordHash,
		&role, &active, &syncUnix, &synced, &c.Address, &c.DateOfBirth)
	if err != nil {
		return model.Credential{}, err
	}
	c.Role = model.Role(role)
	c.IsActive = active != 0
	c.SyncedWithServer = synced != 0
	if syncUnix > 0 {
		c.LastSyncAt = time.Unix(syncUnix, 0).UTC()
	}
	return c, nil
}

func collectCredentials(rows *sql.Rows) ([]model.Credential, error) {
	var out []model.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().Unix()
}
