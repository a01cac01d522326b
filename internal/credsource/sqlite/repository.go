package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborlane/s3gate/internal/auth"
	"github.com/harborlane/s3gate/internal/credsource"
	"github.com/harborlane/s3gate/internal/pkg/crypto"
)

// CredentialRecord is a row in the credentials table.
type CredentialRecord struct {
	ID              int64
	AccessKeyID     string
	EncryptedSecret string
	Region          string
	Owner           string
	Status          string
	CreatedAt       time.Time
	ExpiresAt       *time.Time
	LastUsedAt      *time.Time
}

const statusActive = "Active"

// IsActive reports whether the record is currently usable for
// authentication: status is Active and, if set, ExpiresAt is in the future.
func (r *CredentialRecord) IsActive(now time.Time) bool {
	if r.Status != statusActive {
		return false
	}
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}

// Repository provides CRUD access to the credentials table plus the
// encrypt/decrypt step the registry never needs to know about: the registry
// only ever sees plaintext secret keys produced here.
type Repository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewRepository builds a Repository. encryptor decrypts EncryptedSecret
// column values read from the database; it is never given the plaintext
// registry holds in memory.
func NewRepository(db *DB, encryptor *crypto.Encryptor) *Repository {
	return &Repository{db: db, encryptor: encryptor}
}

// Create inserts a new credential, encrypting secretAccessKey at rest.
func (r *Repository) Create(ctx context.Context, accessKeyID, secretAccessKey, region, owner string, expiresAt *time.Time) error {
	encrypted, err := r.encryptor.EncryptString(secretAccessKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret access key: %w", err)
	}

	var expiresAtStr sql.NullString
	if expiresAt != nil {
		expiresAtStr = sql.NullString{String: expiresAt.Format(time.RFC3339), Valid: true}
	}

	_, err = r.db.db.ExecContext(ctx, `
		INSERT INTO credentials (access_key_id, encrypted_secret, region, owner, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, accessKeyID, encrypted, region, owner, statusActive, time.Now().UTC().Format(time.RFC3339), expiresAtStr)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// ListActive returns every credential currently eligible for
// authentication, decrypted, ready for Source.Load to hand to the registry.
func (r *Repository) ListActive(ctx context.Context) ([]auth.Credential, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT access_key_id, encrypted_secret, region, status, expires_at
		FROM credentials
		WHERE status = ?
	`, statusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	var creds []auth.Credential
	for rows.Next() {
		var accessKeyID, encryptedSecret, region, status string
		var expiresAtStr sql.NullString
		if err := rows.Scan(&accessKeyID, &encryptedSecret, &region, &status, &expiresAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}

		if expiresAtStr.Valid {
			expiresAt, err := time.Parse(time.RFC3339, expiresAtStr.String)
			if err == nil && now.After(expiresAt) {
				continue
			}
		}

		secretAccessKey, err := r.encryptor.DecryptString(encryptedSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt secret for %s: %w", accessKeyID, err)
		}

		cred, err := auth.NewCredential(accessKeyID, secretAccessKey, region)
		if err != nil {
			return nil, fmt.Errorf("stored credential %s fails format validation: %w", accessKeyID, err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}

	return creds, nil
}

// Deactivate sets a credential's status to Inactive; the next BuildRegistry
// call will no longer include it.
func (r *Repository) Deactivate(ctx context.Context, accessKeyID string) error {
	result, err := r.db.db.ExecContext(ctx, `UPDATE credentials SET status = 'Inactive' WHERE access_key_id = ?`, accessKeyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate credential: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("credential %s not found", accessKeyID)
	}
	return nil
}

// DeleteExpired permanently removes credentials past their expiry, for a
// periodic cleanup job.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM credentials WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired credentials: %w", err)
	}
	return result.RowsAffected()
}

// source adapts Repository to credsource.Source.
type source struct {
	repo *Repository
}

// NewSource builds a credsource.Source backed by this repository.
func NewSource(repo *Repository) credsource.Source {
	return &source{repo: repo}
}

// Load implements credsource.Source.
func (s *source) Load(ctx context.Context) ([]auth.Credential, error) {
	return s.repo.ListActive(ctx)
}
