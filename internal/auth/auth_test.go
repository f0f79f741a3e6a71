package auth

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/andy/freelancedesk/internal/domain"
)

type fakeProfiles struct {
	byPhone map[string]domain.Profile
	created int
}

func (f *fakeProfiles) FindByPhone(_ context.Context, phone string) (*domain.Profile, error) {
	if p, ok := f.byPhone[phone]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeProfiles) Create(_ context.Context, phone, email string, at time.Time) (domain.Profile, error) {
	f.created++
	p := domain.Profile{ID: "profile-" + phone, PhoneNumber: phone, Email: email, CreatedAt: at}
	f.byPhone[phone] = p
	return p, nil
}

type fakeOTPs struct {
	otps      map[string]domain.OTP
	deleteErr error
}

func (f *fakeOTPs) Upsert(_ context.Context, otp domain.OTP) error {
	f.otps[otp.PhoneNumber] = otp
	return nil
}

func (f *fakeOTPs) Get(_ context.Context, phone string) (*domain.OTP, error) {
	if o, ok := f.otps[phone]; ok {
		return &o, nil
	}
	return nil, nil
}

func (f *fakeOTPs) Delete(_ context.Context, phone string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.otps, phone)
	return nil
}

type fakeSender struct {
	phone, message string
	err            error
}

func (f *fakeSender) Send(_ context.Context, phone, message string) error {
	f.phone, f.message = phone, message
	return f.err
}

var codeRe = regexp.MustCompile(`is: (\d{6})\.`)

type harness struct {
	svc      *Service
	profiles *fakeProfiles
	otps     *fakeOTPs
	sender   *fakeSender
	now      time.Time
}

func newHarness() *harness {
	h := &harness{
		profiles: &fakeProfiles{byPhone: map[string]domain.Profile{}},
		otps:     &fakeOTPs{otps: map[string]domain.OTP{}},
		sender:   &fakeSender{},
		now:      time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC),
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	h.svc = NewService(h.profiles, h.otps, h.sender, log, Options{
		DefaultRegion:        "IN",
		SyntheticEmailDomain: "phone.test",
		BcryptCost:           bcrypt.MinCost,
		Now:                  func() time.Time { return h.now },
	})
	return h
}

func (h *harness) sentCode(t *testing.T) string {
	t.Helper()
	m := codeRe.FindStringSubmatch(h.sender.message)
	if m == nil {
		t.Fatalf("no code in message %q", h.sender.message)
	}
	return m[1]
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("98765 43210", "IN")
	if err != nil {
		t.Fatalf("NormalizePhone: %v", err)
	}
	if got != "+919876543210" {
		t.Errorf("expected +919876543210, got %s", got)
	}
	if _, err := NormalizePhone("12", "IN"); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}
	if _, err := NormalizePhone("", "IN"); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone for blank, got %v", err)
	}
}

func TestSendOTP_StoresHashAndSendsMessage(t *testing.T) {
	h := newHarness()
	phone, err := h.svc.SendOTP(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := h.sentCode(t)
	if h.sender.phone != phone {
		t.Errorf("expected send to %s, got %s", phone, h.sender.phone)
	}
	if want := "Your OTP for login is: " + code + ". It is valid for 5 minutes."; h.sender.message != want {
		t.Errorf("unexpected message %q", h.sender.message)
	}

	otp := h.otps.otps[phone]
	if otp.CodeHash == code {
		t.Fatal("expected code stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		t.Error("stored hash does not match sent code")
	}
	if !otp.ExpiresAt.Equal(h.now.Add(5 * time.Minute)) {
		t.Errorf("unexpected expiry %v", otp.ExpiresAt)
	}
}

func TestSendOTP_SenderFailure(t *testing.T) {
	h := newHarness()
	h.sender.err = errors.New("gateway down")
	ctx := context.Background()
	if _, err := h.svc.SendOTP(ctx, "9876543210"); err == nil {
		t.Fatal("expected error")
	}
	if len(h.otps.otps) != 0 {
		t.Fatalf("expected undelivered OTP discarded, got %v", h.otps.otps)
	}

	code := h.sentCode(t)
	if _, err := h.svc.VerifyOTP(ctx, "9876543210", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("expected undelivered code rejected, got %v", err)
	}
}

func TestOTPMessage_RoundsUpMinutes(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want string
	}{
		{5 * time.Minute, "valid for 5 minutes."},
		{90 * time.Second, "valid for 2 minutes."},
		{30 * time.Second, "valid for 1 minute."},
	}
	for _, tt := range tests {
		got := OTPMessage("123456", tt.ttl)
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("OTPMessage(%v) = %q, want suffix %q", tt.ttl, got, tt.want)
		}
	}
}

func TestVerifyOTP_CreatesProfileOnFirstLogin(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	phone, _ := h.svc.SendOTP(ctx, "9876543210")
	code := h.sentCode(t)

	id, err := h.svc.VerifyOTP(ctx, "+91 98765 43210", code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if id.UserID == "" || id.Phone != phone || id.Email != "919876543210@phone.test" {
		t.Errorf("unexpected identity %+v", id)
	}
	if h.profiles.created != 1 {
		t.Errorf("expected one profile created, got %d", h.profiles.created)
	}
	if _, ok := h.otps.otps[phone]; ok {
		t.Error("expected OTP consumed")
	}

	if _, err := h.svc.VerifyOTP(ctx, phone, code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("expected reuse to fail, got %v", err)
	}
}

func TestVerifyOTP_ExistingProfile(t *testing.T) {
	h := newHarness()
	h.profiles.byPhone["+919876543210"] = domain.Profile{ID: "u1", PhoneNumber: "+919876543210", Email: "me@example.com"}
	ctx := context.Background()
	h.svc.SendOTP(ctx, "9876543210")

	id, err := h.svc.VerifyOTP(ctx, "9876543210", h.sentCode(t))
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if id.UserID != "u1" || id.Email != "me@example.com" || h.profiles.created != 0 {
		t.Errorf("expected existing profile, got %+v", id)
	}
}

func TestVerifyOTP_Rejections(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.svc.SendOTP(ctx, "9876543210")
	code := h.sentCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := h.svc.VerifyOTP(ctx, "9876543210", wrong); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("wrong code: expected ErrInvalidOTP, got %v", err)
	}
	if _, err := h.svc.VerifyOTP(ctx, "9123456789", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("no pending code: expected ErrInvalidOTP, got %v", err)
	}

	h.now = h.now.Add(5 * time.Minute)
	if _, err := h.svc.VerifyOTP(ctx, "9876543210", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("expired code: expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTP_DeleteFailureStillLogsIn(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.svc.SendOTP(ctx, "9876543210")
	h.otps.deleteErr = errors.New("locked")

	if _, err := h.svc.VerifyOTP(ctx, "9876543210", h.sentCode(t)); err != nil {
		t.Fatalf("expected login despite delete failure, got %v", err)
	}
}
