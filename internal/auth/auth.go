// Package auth implements phone login: a one-time code is delivered over WhatsApp and
// exchanged for a session identity.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
	"golang.org/x/crypto/bcrypt"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/repository"
	"github.com/andy/freelancedesk/internal/session"
)

var (
	ErrInvalidOTP   = errors.New("invalid or expired OTP")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Sender delivers a text message to an E.164 phone number
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

type Options struct {
	DefaultRegion        string
	TTL                  time.Duration
	SyntheticEmailDomain string
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
	Now        func() time.Time
}

type Service struct {
	profiles repository.ProfileRepository
	otps     repository.OTPRepository
	sender   Sender
	log      logrus.FieldLogger
	opts     Options
}

func NewService(profiles repository.ProfileRepository, otps repository.OTPRepository, sender Sender, log logrus.FieldLogger, opts Options) *Service {
	if opts.DefaultRegion == "" {
		opts.DefaultRegion = "IN"
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.SyntheticEmailDomain == "" {
		opts.SyntheticEmailDomain = "phone.freelancedesk.local"
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		profiles: profiles,
		otps:     otps,
		sender:   sender,
		log:      log.WithField("module", "auth"),
		opts:     opts,
	}
}

// NormalizePhone parses raw in the given default region and returns it in E.164 form
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: phone number is required", ErrInvalidPhone)
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// OTPMessage is the text delivered to the user
func OTPMessage(code string, ttl time.Duration) string {
	minutes := int(math.Ceil(ttl.Minutes()))
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Your OTP for login is: %s. It is valid for %d %s.", code, minutes, unit)
}

// SendOTP issues a fresh code for phone, replacing any pending one, and sends it.
// It returns the normalized number.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, error) {
	e164, err := NormalizePhone(phone, s.opts.DefaultRegion)
	if err != nil {
		return "", err
	}
	log := s.log.WithFields(logrus.Fields{"op": "send_otp", "phone": e164})

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash OTP: %w", err)
	}

	otp := domain.OTP{PhoneNumber: e164, CodeHash: string(hash), ExpiresAt: s.opts.Now().Add(s.opts.TTL)}
	if err := s.otps.Upsert(ctx, otp); err != nil {
		log.WithError(err).Error("failed to store OTP")
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.sender.Send(ctx, e164, OTPMessage(code, s.opts.TTL)); err != nil {
		log.WithError(err).Error("failed to send OTP")
		if derr := s.otps.Delete(ctx, e164); derr != nil {
			log.WithError(derr).Error("failed to discard undelivered OTP")
		}
		return "", fmt.Errorf("failed to send OTP: %w", err)
	}
	log.Info("OTP sent")
	return e164, nil
}

// VerifyOTP checks code against the pending OTP for phone. On success the OTP is consumed and
// the profile for phone is returned as an identity, created on first login.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (session.Identity, error) {
	e164, err := NormalizePhone(phone, s.opts.DefaultRegion)
	if err != nil {
		return session.Identity{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return session.Identity{}, ErrInvalidOTP
	}
	log := s.log.WithFields(logrus.Fields{"op": "verify_otp", "phone": e164})

	otp, err := s.otps.Get(ctx, e164)
	if err != nil {
		return session.Identity{}, err
	}
	if otp == nil || otp.Expired(s.opts.Now()) ||
		bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		log.Warn("invalid or expired OTP attempt")
		return session.Identity{}, ErrInvalidOTP
	}

	if err := s.otps.Delete(ctx, e164); err != nil {
		log.WithError(err).Error("failed to delete used OTP")
	}

	profile, err := s.profiles.FindByPhone(ctx, e164)
	if err != nil {
		return session.Identity{}, fmt.Errorf("authentication failed: %w", err)
	}
	if profile == nil {
		created, err := s.profiles.Create(ctx, e164, s.syntheticEmail(e164), s.opts.Now())
		if err != nil {
			return session.Identity{}, fmt.Errorf("failed to create user: %w", err)
		}
		profile = &created
		log.WithField("user_id", created.ID).Info("created profile for new phone login")
	}

	email := profile.Email
	if email == "" {
		email = s.syntheticEmail(e164)
	}
	return session.Identity{UserID: profile.ID, Phone: e164, Email: email}, nil
}

func (s *Service) syntheticEmail(e164 string) string {
	return strings.TrimPrefix(e164, "+") + "@" + s.opts.SyntheticEmailDomain
}
