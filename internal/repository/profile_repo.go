package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

// ProfileRepo is a SQLite implementation of ProfileRepository
type ProfileRepo struct {
	db *db.DB
}

func NewProfileRepo(database *db.DB) *ProfileRepo {
	return &ProfileRepo{db: database}
}

// FindByPhone returns the profile registered to an E.164 number, or nil
func (r *ProfileRepo) FindByPhone(ctx context.Context, phone string) (*domain.Profile, error) {
	var p domain.Profile
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, phone_number, email, created_at FROM profiles WHERE phone_number = ?`, phone,
	).Scan(&p.ID, &p.PhoneNumber, &p.Email, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, persistenceError("get", "profiles", fmt.Errorf("failed to find profile: %w", err))
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, persistenceError("get", "profiles", fmt.Errorf("failed to parse created_at: %w", err))
	}
	return &p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, phone, email string, at time.Time) (domain.Profile, error) {
	p := domain.Profile{ID: uuid.NewString(), PhoneNumber: phone, Email: email, CreatedAt: at}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, phone_number, email, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.PhoneNumber, p.Email, formatTime(at))
	if err != nil {
		return domain.Profile{}, persistenceError("insert", "profiles", fmt.Errorf("failed to create profile: %w", err))
	}
	return p, nil
}

// OTPRepo is a SQLite implementation of OTPRepository
type OTPRepo struct {
	db *db.DB
}

func NewOTPRepo(database *db.DB) *OTPRepo {
	return &OTPRepo{db: database}
}

// Upsert replaces any pending code for the phone number
func (r *OTPRepo) Upsert(ctx context.Context, otp domain.OTP) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_otps (phone_number, otp_hash, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(phone_number) DO UPDATE SET otp_hash = excluded.otp_hash, expires_at = excluded.expires_at`,
		otp.PhoneNumber, otp.CodeHash, formatTime(otp.ExpiresAt))
	if err != nil {
		return persistenceError("upsert", "whatsapp_otps", fmt.Errorf("failed to store otp: %w", err))
	}
	return nil
}

func (r *OTPRepo) Get(ctx context.Context, phone string) (*domain.OTP, error) {
	var o domain.OTP
	var expiresAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT phone_number, otp_hash, expires_at FROM whatsapp_otps WHERE phone_number = ?`, phone,
	).Scan(&o.PhoneNumber, &o.CodeHash, &expiresAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, persistenceError("get", "whatsapp_otps", fmt.Errorf("failed to get otp: %w", err))
	}
	if o.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, persistenceError("get", "whatsapp_otps", fmt.Errorf("failed to parse expires_at: %w", err))
	}
	return &o, nil
}

func (r *OTPRepo) Delete(ctx context.Context, phone string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM whatsapp_otps WHERE phone_number = ?`, phone)
	if err != nil {
		return persistenceError("delete", "whatsapp_otps", fmt.Errorf("failed to delete otp: %w", err))
	}
	return nil
}
