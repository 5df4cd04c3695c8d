package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	impl "github.com/identitykit/account-service/internal/application/services"
	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
	"github.com/identitykit/account-service/internal/core/ports"
)

type accountServiceMock struct {
	createFn          func(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error)
	activateFn        func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	findByEmailFn     func(ctx context.Context, email string) (*account.Account, error)
	deleteExpiredFn   func(ctx context.Context) (int, error)
	hardDeleteExpired func(ctx context.Context) (int, error)
}

func (m *accountServiceMock) CreateAccount(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error) {
	if m.createFn != nil {
		return m.createFn(ctx, loginID, email, passwordHash)
	}
	return &account.Account{ID: uuid.New(), LoginID: loginID, Email: email, Status: account.StatusNotVerified}, nil
}
func (m *accountServiceMock) Activate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.activateFn != nil {
		return m.activateFn(ctx, id)
	}
	return &account.Account{ID: id, Status: account.StatusActive}, nil
}
func (m *accountServiceMock) FindActiveByEmail(ctx context.Context, email string) (*account.Account, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, account.ErrAccountNotFound
}
func (m *accountServiceMock) DeleteExpiredUnverifiedAccounts(ctx context.Context) (int, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}
func (m *accountServiceMock) HardDeleteExpiredDeletedAccounts(ctx context.Context) (int, error) {
	if m.hardDeleteExpired != nil {
		return m.hardDeleteExpired(ctx)
	}
	return 0, nil
}

type verificationStoreMock struct {
	createPendingFn func(ctx context.Context, a *account.Account, token string, typ verification.Type, ttl time.Duration) (*verification.Record, error)
	findValidFn     func(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error)
	markVerifiedFn  func(ctx context.Context, id uuid.UUID, now time.Time) error
	findPendingFn   func(ctx context.Context, accountID uuid.UUID, typ verification.Type) (*verification.Record, error)
}

func (m *verificationStoreMock) CreatePending(ctx context.Context, a *account.Account, token string, typ verification.Type, ttl time.Duration) (*verification.Record, error) {
	if m.createPendingFn != nil {
		return m.createPendingFn(ctx, a, token, typ, ttl)
	}
	return &verification.Record{ID: uuid.New(), AccountID: a.ID, Token: token, Type: typ}, nil
}
func (m *verificationStoreMock) FindValid(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error) {
	if m.findValidFn != nil {
		return m.findValidFn(ctx, claims, rawToken, now)
	}
	return nil, verification.ErrRecordNotFound
}
func (m *verificationStoreMock) MarkVerified(ctx context.Context, id uuid.UUID, now time.Time) error {
	if m.markVerifiedFn != nil {
		return m.markVerifiedFn(ctx, id, now)
	}
	return nil
}
func (m *verificationStoreMock) FindPendingByAccountAndType(ctx context.Context, accountID uuid.UUID, typ verification.Type) (*verification.Record, error) {
	if m.findPendingFn != nil {
		return m.findPendingFn(ctx, accountID, typ)
	}
	return nil, verification.ErrNoPendingVerification
}

type tokenServiceMock struct {
	generateFn func(email string, typ verification.Type) (string, error)
	validateFn func(token string) (*verification.Claims, error)
}

func (m *tokenServiceMock) Generate(email string, typ verification.Type) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(email, typ)
	}
	return "signed-token", nil
}
func (m *tokenServiceMock) Validate(token string) (*verification.Claims, error) {
	if m.validateFn != nil {
		return m.validateFn(token)
	}
	return nil, verification.ErrTokenInvalid
}

type hasherMock struct{}

func (hasherMock) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (hasherMock) Compare(hash, password string) error  { return nil }

type dispatcherMock struct {
	messages []ports.OutboxMessage
}

func (m *dispatcherMock) Enqueue(ctx context.Context, msg ports.OutboxMessage) {
	m.messages = append(m.messages, msg)
}

// txManagerMock runs the function inline and fires after-commit hooks only on
// success, mirroring the real manager's contract.
type txManagerMock struct {
	hooks []func()
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.hooks = nil
	if err := fn(ctx); err != nil {
		m.hooks = nil
		return err
	}
	for _, hook := range m.hooks {
		hook()
	}
	return nil
}
func (m *txManagerMock) AfterCommit(ctx context.Context, fn func()) {
	m.hooks = append(m.hooks, fn)
}

type resendLimiterMock struct {
	acquireFn func(ctx context.Context, email string) (bool, error)
}

func (m *resendLimiterMock) Acquire(ctx context.Context, email string) (bool, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx, email)
	}
	return true, nil
}

func newFacade(accounts ports.AccountService, store ports.VerificationStore, tokens ports.TokenService, dispatcher ports.EventDispatcher, limiter ports.ResendLimiter) ports.RegistrationService {
	return impl.NewAuthFacade(accounts, store, tokens, hasherMock{}, dispatcher, &txManagerMock{}, limiter, time.Hour, nil)
}

func TestSignUp_Success(t *testing.T) {
	var createdHash string
	accounts := &accountServiceMock{
		createFn: func(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error) {
			createdHash = passwordHash
			return &account.Account{ID: uuid.New(), LoginID: loginID, Email: email, Status: account.StatusNotVerified}, nil
		},
	}
	dispatcher := &dispatcherMock{}
	svc := newFacade(accounts, &verificationStoreMock{}, &tokenServiceMock{}, dispatcher, nil)

	err := svc.SignUp(context.Background(), &account.CreateAccountRequest{LoginID: "alice", Email: "alice@example.com", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdHash != "hashed:Passw0rd!" {
		t.Fatalf("expected hashed password to reach account creation, got %q", createdHash)
	}
	if len(dispatcher.messages) != 1 {
		t.Fatalf("expected 1 enqueued email, got %d", len(dispatcher.messages))
	}
	msg := dispatcher.messages[0]
	if msg.Recipient != "alice@example.com" || msg.Token != "signed-token" || msg.Resend {
		t.Fatalf("unexpected outbox message: %+v", msg)
	}
}

func TestSignUp_DuplicateAccount(t *testing.T) {
	accounts := &accountServiceMock{
		createFn: func(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error) {
			return nil, account.ErrDuplicateAccount
		},
	}
	dispatcher := &dispatcherMock{}
	svc := newFacade(accounts, &verificationStoreMock{}, &tokenServiceMock{}, dispatcher, nil)

	err := svc.SignUp(context.Background(), &account.CreateAccountRequest{LoginID: "alice", Email: "alice@example.com", Password: "Passw0rd!"})
	if !errors.Is(err, account.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
	if len(dispatcher.messages) != 0 {
		t.Fatal("expected no email for a failed sign-up")
	}
}

func TestVerifyEmail_Success(t *testing.T) {
	accountID := uuid.New()
	recordID := uuid.New()
	var markedBeforeActivate bool
	var marked bool

	tokens := &tokenServiceMock{
		validateFn: func(token string) (*verification.Claims, error) {
			return &verification.Claims{Email: "alice@example.com", Type: verification.TypeSignup, Nonce: "abc"}, nil
		},
	}
	store := &verificationStoreMock{
		findValidFn: func(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error) {
			return &verification.Record{ID: recordID, AccountID: accountID, Token: rawToken}, nil
		},
		markVerifiedFn: func(ctx context.Context, id uuid.UUID, now time.Time) error {
			marked = true
			return nil
		},
	}
	accounts := &accountServiceMock{
		activateFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) {
			markedBeforeActivate = marked
			return &account.Account{ID: id, Status: account.StatusActive}, nil
		},
	}
	svc := newFacade(accounts, store, tokens, &dispatcherMock{}, nil)

	verified, err := svc.VerifyEmail(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified.ID != accountID {
		t.Fatalf("unexpected account: %+v", verified)
	}
	if !markedBeforeActivate {
		t.Fatal("expected record to be consumed before activation")
	}
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	svc := newFacade(&accountServiceMock{}, &verificationStoreMock{}, &tokenServiceMock{}, &dispatcherMock{}, nil)

	_, err := svc.VerifyEmail(context.Background(), "bogus")
	if !errors.Is(err, verification.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestVerifyEmail_AlreadyConsumed(t *testing.T) {
	tokens := &tokenServiceMock{
		validateFn: func(token string) (*verification.Claims, error) {
			return &verification.Claims{Email: "alice@example.com", Type: verification.TypeSignup}, nil
		},
	}
	store := &verificationStoreMock{
		findValidFn: func(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error) {
			return &verification.Record{ID: uuid.New(), AccountID: uuid.New()}, nil
		},
		markVerifiedFn: func(ctx context.Context, id uuid.UUID, now time.Time) error {
			return verification.ErrRecordNotFound
		},
	}
	var activated bool
	accounts := &accountServiceMock{
		activateFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) {
			activated = true
			return &account.Account{ID: id}, nil
		},
	}
	svc := newFacade(accounts, store, tokens, &dispatcherMock{}, nil)

	_, err := svc.VerifyEmail(context.Background(), "raced-token")
	if !errors.Is(err, verification.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
	if activated {
		t.Fatal("expected no activation when record was already consumed")
	}
}

func TestResendEmail_ReusesExistingToken(t *testing.T) {
	accountID := uuid.New()
	accounts := &accountServiceMock{
		findByEmailFn: func(ctx context.Context, email string) (*account.Account, error) {
			return &account.Account{ID: accountID, Email: email, Status: account.StatusNotVerified}, nil
		},
	}
	store := &verificationStoreMock{
		findPendingFn: func(ctx context.Context, id uuid.UUID, typ verification.Type) (*verification.Record, error) {
			return &verification.Record{ID: uuid.New(), AccountID: id, Token: "original-token", Type: typ}, nil
		},
	}
	dispatcher := &dispatcherMock{}
	svc := newFacade(accounts, store, &tokenServiceMock{}, dispatcher, &resendLimiterMock{})

	err := svc.ResendEmail(context.Background(), &verification.ResendEmailRequest{Email: "alice@example.com", Type: verification.TypeSignup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.messages) != 1 {
		t.Fatalf("expected 1 enqueued email, got %d", len(dispatcher.messages))
	}
	msg := dispatcher.messages[0]
	if msg.Token != "original-token" || !msg.Resend {
		t.Fatalf("expected resend of the original token, got %+v", msg)
	}
}

func TestResendEmail_Throttled(t *testing.T) {
	accounts := &accountServiceMock{
		findByEmailFn: func(ctx context.Context, email string) (*account.Account, error) {
			return &account.Account{ID: uuid.New(), Email: email}, nil
		},
	}
	store := &verificationStoreMock{
		findPendingFn: func(ctx context.Context, id uuid.UUID, typ verification.Type) (*verification.Record, error) {
			return &verification.Record{ID: uuid.New(), AccountID: id, Token: "tok"}, nil
		},
	}
	limiter := &resendLimiterMock{
		acquireFn: func(ctx context.Context, email string) (bool, error) { return false, nil },
	}
	dispatcher := &dispatcherMock{}
	svc := newFacade(accounts, store, &tokenServiceMock{}, dispatcher, limiter)

	err := svc.ResendEmail(context.Background(), &verification.ResendEmailRequest{Email: "alice@example.com", Type: verification.TypeSignup})
	if !errors.Is(err, verification.ErrResendThrottled) {
		t.Fatalf("expected ErrResendThrottled, got %v", err)
	}
	if len(dispatcher.messages) != 0 {
		t.Fatal("expected no email while throttled")
	}
}

func TestResendEmail_NoPendingVerification(t *testing.T) {
	accounts := &accountServiceMock{
		findByEmailFn: func(ctx context.Context, email string) (*account.Account, error) {
			return &account.Account{ID: uuid.New(), Email: email}, nil
		},
	}
	svc := newFacade(accounts, &verificationStoreMock{}, &tokenServiceMock{}, &dispatcherMock{}, nil)

	err := svc.ResendEmail(context.Background(), &verification.ResendEmailRequest{Email: "alice@example.com", Type: verification.TypeSignup})
	if !errors.Is(err, verification.ErrNoPendingVerification) {
		t.Fatalf("expected ErrNoPendingVerification, got %v", err)
	}
}
