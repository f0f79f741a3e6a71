package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

const businessProfileColumns = `id, user_id, business_name, contact_email, phone_number, address, website, created_at, updated_at`

// BusinessProfileRepo is a SQLite implementation of BusinessProfileGateway
type BusinessProfileRepo struct {
	db *db.DB
}

// NewBusinessProfileRepo creates a new BusinessProfileRepo
func NewBusinessProfileRepo(database *db.DB) *BusinessProfileRepo {
	return &BusinessProfileRepo{db: database}
}

func scanBusinessProfile(row rowScanner) (domain.BusinessProfile, error) {
	var b domain.BusinessProfile
	var name, email, phone, address, website sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&b.ID, &b.UserID, &name, &email, &phone, &address, &website, &createdAt, &updatedAt)
	if err != nil {
		return b, err
	}
	b.BusinessName = stringPtr(name)
	b.ContactEmail = stringPtr(email)
	b.PhoneNumber = stringPtr(phone)
	b.Address = stringPtr(address)
	b.Website = stringPtr(website)
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return b, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return b, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return b, nil
}

// Get returns the owner's profile, or nil when none has been saved
func (r *BusinessProfileRepo) Get(ctx context.Context, owner string) (*domain.BusinessProfile, error) {
	query := `SELECT ` + businessProfileColumns + ` FROM business_profiles WHERE user_id = ?`
	b, err := scanBusinessProfile(r.db.QueryRowContext(ctx, query, owner))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, persistenceError("get", "business_profiles", fmt.Errorf("failed to get business profile: %w", err))
	}
	return &b, nil
}

// Insert creates the owner's profile
func (r *BusinessProfileRepo) Insert(ctx context.Context, owner string, in domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error) {
	b := domain.BusinessProfile{ID: uuid.NewString(), UserID: owner, CreatedAt: at}.Apply(in, at)

	query := `INSERT INTO business_profiles (` + businessProfileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, owner,
		nullString(b.BusinessName), nullString(b.ContactEmail), nullString(b.PhoneNumber),
		nullString(b.Address), nullString(b.Website),
		formatTime(at), formatTime(at),
	)
	if err != nil {
		return domain.BusinessProfile{}, persistenceError("insert", "business_profiles", fmt.Errorf("failed to create business profile: %w", err))
	}
	return b, nil
}

// Update applies patch to the owner's profile and returns the stored row
func (r *BusinessProfileRepo) Update(ctx context.Context, id, owner string, patch domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error) {
	var s setList
	s.optional("business_name", patch.BusinessName)
	s.optional("contact_email", patch.ContactEmail)
	s.optional("phone_number", patch.PhoneNumber)
	s.optional("address", patch.Address)
	s.optional("website", patch.Website)
	s.set("updated_at", formatTime(at))

	query := `UPDATE business_profiles SET ` + s.clause() + ` WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, append(s.args, id, owner)...)
	if err != nil {
		return domain.BusinessProfile{}, persistenceError("update", "business_profiles", fmt.Errorf("failed to update business profile: %w", err))
	}
	if err := checkAffected(result, "business profile "+id); err != nil {
		return domain.BusinessProfile{}, persistenceError("update", "business_profiles", err)
	}

	b, err := r.Get(ctx, owner)
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	if b == nil {
		return domain.BusinessProfile{}, persistenceError("update", "business_profiles", domain.ErrNotFound)
	}
	return *b, nil
}
