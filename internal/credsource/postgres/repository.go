package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlane/s3gate/internal/auth"
	"github.com/harborlane/s3gate/internal/credsource"
	"github.com/harborlane/s3gate/internal/pkg/crypto"
)

const statusActive = "Active"

// Repository provides CRUD access to the credentials table.
type Repository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewRepository builds a Repository.
func NewRepository(db *DB, encryptor *crypto.Encryptor) *Repository {
	return &Repository{db: db, encryptor: encryptor}
}

// Create inserts a new credential, encrypting secretAccessKey at rest.
func (r *Repository) Create(ctx context.Context, accessKeyID, secretAccessKey, region, owner string, expiresAt *time.Time) error {
	encrypted, err := r.encryptor.EncryptString(secretAccessKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret access key: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO credentials (access_key_id, encrypted_secret, region, owner, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, accessKeyID, encrypted, region, owner, statusActive, time.Now().UTC(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// ListActive returns every currently-eligible credential, decrypted.
func (r *Repository) ListActive(ctx context.Context) ([]auth.Credential, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT access_key_id, encrypted_secret, region, expires_at
		FROM credentials
		WHERE status = $1 AND (expires_at IS NULL OR expires_at > now())
	`, statusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []auth.Credential
	for rows.Next() {
		var accessKeyID, encryptedSecret, region string
		var expiresAt *time.Time
		if err := rows.Scan(&accessKeyID, &encryptedSecret, &region, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
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

// Deactivate sets a credential's status to Inactive.
func (r *Repository) Deactivate(ctx context.Context, accessKeyID string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE credentials SET status = 'Inactive' WHERE access_key_id = $1`, accessKeyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credential %s not found", accessKeyID)
	}
	return nil
}

// DeleteExpired permanently removes credentials past their expiry.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM credentials WHERE expires_at IS NOT NULL AND expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired credentials: %w", err)
	}
	return tag.RowsAffected(), nil
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
