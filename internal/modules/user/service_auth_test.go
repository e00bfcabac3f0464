package user

import (
	"context"
	"errors"
	"testing"
	"time"
)

func registerManual(t *testing.T, svc Service, email string) *User {
	t.Helper()
	account, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Ada",
		Email:        email,
		Mobile:       "5551234567",
		Password:     "correct horse battery",
		RegisterType: RegisterTypeManual,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return account
}

func TestRegisterManual(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, notifier)

	account, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Ada",
		Email:        "  Ada@Example.COM ",
		Mobile:       "5551234567",
		Password:     "correct horse battery",
		RegisterType: RegisterTypeManual,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", account.Email)
	}
	if account.PasswordHash == nil || *account.PasswordHash == "correct horse battery" {
		t.Error("password not hashed")
	}
	if !account.HasPendingOTP() {
		t.Error("expected a pending passcode after manual registration")
	}
	if account.OTPVerified {
		t.Error("manual account must start unverified")
	}

	sent, ok := notifier.last()
	if !ok {
		t.Fatal("expected a passcode email")
	}
	if sent.to != "ada@example.com" || sent.code != *account.OTPCode {
		t.Errorf("dispatched %+v, want code %s to ada@example.com", sent, *account.OTPCode)
	}
}

func TestRegisterSocial(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, notifier)

	uid := "google-oauth2|12345"
	account, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Grace",
		Email:        "grace@example.com",
		Mobile:       "5559876543",
		RegisterType: RegisterTypeSocial,
		UID:          &uid,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if !account.OTPVerified || !account.Verified() {
		t.Error("social account must be verified at creation")
	}
	if account.HasPendingOTP() {
		t.Error("social account must not have a pending passcode")
	}
	if account.PasswordHash != nil {
		t.Error("social account must not carry a password hash")
	}
	if notifier.calls != 0 {
		t.Error("no passcode email expected for social registration")
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	svc, _ := newTestService(newFakeRepository(), &fakeNotifier{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "X", Email: "x@example.com", RegisterType: "sso",
	})
	if !errors.Is(err, ErrInvalidRegisterType) {
		t.Errorf("expected ErrInvalidRegisterType, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "X", Email: "x@example.com", RegisterType: RegisterTypeManual,
	})
	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newFakeRepository(), &fakeNotifier{})
	registerManual(t, svc, "dup@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Other",
		Email:        "dup@example.com",
		Mobile:       "5550000000",
		Password:     "another password",
		RegisterType: RegisterTypeManual,
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterSucceedsWhenDispatchFails(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{fail: true}
	svc, _ := newTestService(repo, notifier)

	account := registerManual(t, svc, "ada@example.com")
	if !repo.mustGet(account.ID).HasPendingOTP() {
		t.Error("passcode must stay armed when email dispatch fails")
	}
}

func TestLoginManualArmsFreshOTP(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, notifier)
	account := registerManual(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Email:        "ada@example.com",
		Password:     "correct horse battery",
		RegisterType: RegisterTypeManual,
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !result.OTPRequired {
		t.Error("manual login must require passcode verification")
	}
	if result.AccessToken != "" || result.RefreshToken != "" {
		t.Error("no tokens may be issued before passcode verification")
	}

	stored := repo.mustGet(account.ID)
	if stored.OTPVerified {
		t.Error("verification must be reset on password login")
	}
	if !stored.HasPendingOTP() {
		t.Fatal("expected a pending passcode after login")
	}
	if notifier.calls != 2 {
		t.Errorf("expected 2 passcode emails (register + login), got %d", notifier.calls)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestService(newFakeRepository(), &fakeNotifier{})
	registerManual(t, svc, "ada@example.com")

	cases := []struct {
		name  string
		input LoginInput
	}{
		{"unknown email", LoginInput{Email: "ghost@example.com", Password: "whatever", RegisterType: RegisterTypeManual}},
		{"wrong password", LoginInput{Email: "ada@example.com", Password: "wrong", RegisterType: RegisterTypeManual}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginRejectsMismatchedRegisterType(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo, &fakeNotifier{})
	account := registerManual(t, svc, "ada@example.com")
	uid := "google-oauth2|99999"

	// A password account must not get tokens through the social path.
	result, err := svc.Login(context.Background(), LoginInput{
		Email:        "ada@example.com",
		RegisterType: RegisterTypeSocial,
		UID:          &uid,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got result %+v, err %v", result, err)
	}
	if stored := repo.mustGet(account.ID); stored.AccessToken != nil || stored.RefreshToken != nil {
		t.Error("no tokens may be recorded for a mismatched login mode")
	}

	// The reverse direction is rejected the same way.
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Grace", Email: "grace@example.com", Mobile: "5559876543",
		RegisterType: RegisterTypeSocial, UID: &uid,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{
		Email:        "grace@example.com",
		Password:     "whatever",
		RegisterType: RegisterTypeManual,
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{
		Email:        "ada@example.com",
		RegisterType: "sso",
	}); !errors.Is(err, ErrInvalidRegisterType) {
		t.Errorf("expected ErrInvalidRegisterType, got %v", err)
	}
}

func TestLoginSocialIssuesTokens(t *testing.T) {
	repo := newFakeRepository()
	svc, tokens := newTestService(repo, &fakeNotifier{})
	uid := "google-oauth2|12345"
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Grace", Email: "grace@example.com", Mobile: "5559876543",
		RegisterType: RegisterTypeSocial, UID: &uid,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email:        "grace@example.com",
		RegisterType: RegisterTypeSocial,
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.OTPRequired {
		t.Error("social login must not require a passcode")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	subject, err := tokens.Decode(result.AccessToken)
	if err != nil || subject != "grace@example.com" {
		t.Errorf("access token subject = %q, err = %v", subject, err)
	}
}

func TestVerifyOTP(t *testing.T) {
	repo := newFakeRepository()
	svc, tokens := newTestService(repo, &fakeNotifier{})
	account := registerManual(t, svc, "ada@example.com")
	code := *repo.mustGet(account.ID).OTPCode

	result, err := svc.VerifyOTP(context.Background(), "ada@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a token pair after verification")
	}
	if subject, err := tokens.Decode(result.RefreshToken); err != nil || subject != "ada@example.com" {
		t.Errorf("refresh token subject = %q, err = %v", subject, err)
	}

	stored := repo.mustGet(account.ID)
	if stored.HasPendingOTP() {
		t.Error("passcode fields must clear on success")
	}
	if !stored.OTPVerified {
		t.Error("account must be verified on success")
	}
}

func TestVerifyOTPFailures(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo, &fakeNotifier{})
	account := registerManual(t, svc, "ada@example.com")
	code := *repo.mustGet(account.ID).OTPCode

	if _, err := svc.VerifyOTP(context.Background(), "ghost@example.com", code); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email: expected ErrNotFound, got %v", err)
	}

	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}
	if _, err := svc.VerifyOTP(context.Background(), "ada@example.com", wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Errorf("wrong code: expected ErrOTPMismatch, got %v", err)
	}
	if !repo.mustGet(account.ID).HasPendingOTP() {
		t.Error("a mismatch must leave the passcode pending")
	}

	// Force the pending code past its expiry.
	past := time.Now().Add(-time.Minute)
	if err := repo.ArmOTP(context.Background(), account.ID, code, past); err != nil {
		t.Fatalf("ArmOTP: %v", err)
	}
	if _, err := svc.VerifyOTP(context.Background(), "ada@example.com", code); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("expired code: expected ErrOTPExpired, got %v", err)
	}
	if !repo.mustGet(account.ID).HasPendingOTP() {
		t.Error("an expired code must stay pending until reset")
	}
}

func TestVerifyOTPNoPending(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo, &fakeNotifier{})
	account := registerManual(t, svc, "ada@example.com")
	code := *repo.mustGet(account.ID).OTPCode

	if _, err := svc.VerifyOTP(context.Background(), "ada@example.com", code); err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	// The round completed; a second attempt has nothing to verify.
	if _, err := svc.VerifyOTP(context.Background(), "ada@example.com", code); !errors.Is(err, ErrNoPendingOTP) {
		t.Errorf("expected ErrNoPendingOTP, got %v", err)
	}
}

func TestResetOTP(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, notifier)
	account := registerManual(t, svc, "ada@example.com")

	if err := svc.ResetOTP(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("ResetOTP returned error: %v", err)
	}
	stored := repo.mustGet(account.ID)
	if !stored.HasPendingOTP() {
		t.Fatal("expected a pending passcode after reset")
	}
	sent, ok := notifier.last()
	if !ok || sent.code != *stored.OTPCode {
		t.Error("reset must dispatch the newly armed code")
	}

	if err := svc.ResetOTP(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email: expected ErrNotFound, got %v", err)
	}
}

func TestResetOTPSocialAccount(t *testing.T) {
	svc, _ := newTestService(newFakeRepository(), &fakeNotifier{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Grace", Email: "grace@example.com", Mobile: "5559876543",
		RegisterType: RegisterTypeSocial,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if err := svc.ResetOTP(context.Background(), "grace@example.com"); !errors.Is(err, ErrOTPNotApplicable) {
		t.Errorf("expected ErrOTPNotApplicable, got %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeRepository()
	svc, tokens := newTestService(repo, &fakeNotifier{})
	account := registerManual(t, svc, "ada@example.com")
	code := *repo.mustGet(account.ID).OTPCode
	result, err := svc.VerifyOTP(context.Background(), "ada@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}

	access, err := svc.RefreshToken(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if subject, err := tokens.Decode(access); err != nil || subject != "ada@example.com" {
		t.Errorf("new access token subject = %q, err = %v", subject, err)
	}

	if _, err := svc.RefreshToken(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
