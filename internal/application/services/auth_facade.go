package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
	"github.com/identitykit/account-service/internal/core/ports"
)

// AuthFacade coordinates token issuance, the verification store, the account
// lifecycle and the outbox for the three user-facing operations.
type AuthFacade struct {
	accounts      ports.AccountService
	store         ports.VerificationStore
	tokens        ports.TokenService
	hasher        ports.PasswordHasher
	dispatcher    ports.EventDispatcher
	tx            ports.TransactionManager
	resendLimiter ports.ResendLimiter
	tokenTTL      time.Duration
	logger        *logrus.Logger
}

func NewAuthFacade(
	accounts ports.AccountService,
	store ports.VerificationStore,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	dispatcher ports.EventDispatcher,
	tx ports.TransactionManager,
	resendLimiter ports.ResendLimiter,
	tokenTTL time.Duration,
	logger *logrus.Logger,
) ports.RegistrationService {
	return &AuthFacade{
		accounts:      accounts,
		store:         store,
		tokens:        tokens,
		hasher:        hasher,
		dispatcher:    dispatcher,
		tx:            tx,
		resendLimiter: resendLimiter,
		tokenTTL:      tokenTTL,
		logger:        logger,
	}
}

// SignUp creates the account, its pending verification record and the queued
// verification mail as one atomic unit. The mail is only handed to the
// consumer after the transaction commits, so a rolled-back signup never
// produces an email.
func (f *AuthFacade) SignUp(ctx context.Context, req *account.CreateAccountRequest) error {
	passwordHash, err := f.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	return f.tx.WithinTx(ctx, func(txCtx context.Context) error {
		a, err := f.accounts.CreateAccount(txCtx, req.LoginID, req.Email, passwordHash)
		if err != nil {
			return err
		}

		token, err := f.tokens.Generate(a.Email, verification.TypeSignup)
		if err != nil {
			return err
		}

		if _, err := f.store.CreatePending(txCtx, a, token, verification.TypeSignup, f.tokenTTL); err != nil {
			return err
		}

		f.dispatcher.Enqueue(txCtx, ports.OutboxMessage{
			Recipient: a.Email,
			Token:     token,
			Type:      verification.TypeSignup,
		})

		if f.logger != nil {
			f.logger.WithFields(logrus.Fields{"account_id": a.ID, "login_id": a.LoginID}).Info("sign-up accepted")
		}

		return nil
	})
}

// VerifyEmail validates the token, consumes its record and activates the
// account in one transaction. Every token, lookup or replay failure surfaces
// as the single merged ErrInvalidOrExpiredToken so callers cannot tell which
// check failed.
func (f *AuthFacade) VerifyEmail(ctx context.Context, token string) (*account.Account, error) {
	claims, err := f.tokens.Validate(token)
	if err != nil {
		if f.logger != nil {
			f.logger.WithError(err).Debug("verification token rejected")
		}
		return nil, verification.ErrInvalidOrExpiredToken
	}

	now := time.Now()
	var verified *account.Account

	err = f.tx.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := f.store.FindValid(txCtx, claims, token, now)
		if err != nil {
			if errors.Is(err, verification.ErrRecordNotFound) {
				return verification.ErrInvalidOrExpiredToken
			}
			return err
		}

		// Consume the record first; the conditional update makes the whole
		// flow at-most-once under concurrent verifications of the same token.
		if err := f.store.MarkVerified(txCtx, record.ID, now); err != nil {
			if errors.Is(err, verification.ErrRecordNotFound) {
				return verification.ErrInvalidOrExpiredToken
			}
			return err
		}

		verified, err = f.accounts.Activate(txCtx, record.AccountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.logger != nil {
		f.logger.WithFields(logrus.Fields{"account_id": verified.ID, "login_id": verified.LoginID}).Info("email verified")
	}

	return verified, nil
}

// ResendEmail re-queues the verification mail for the account's pending
// record, reusing the existing token. No new token or record is created, so
// a link the user already holds stays valid.
func (f *AuthFacade) ResendEmail(ctx context.Context, req *verification.ResendEmailRequest) error {
	a, err := f.accounts.FindActiveByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	record, err := f.store.FindPendingByAccountAndType(ctx, a.ID, req.Type)
	if err != nil {
		return err
	}

	if f.resendLimiter != nil {
		allowed, err := f.resendLimiter.Acquire(ctx, req.Email)
		if err != nil {
			return err
		}
		if !allowed {
			return verification.ErrResendThrottled
		}
	}

	f.dispatcher.Enqueue(ctx, ports.OutboxMessage{
		Recipient: a.Email,
		Token:     record.Token,
		Type:      req.Type,
		Resend:    true,
	})

	if f.logger != nil {
		f.logger.WithFields(logrus.Fields{"account_id": a.ID, "type": req.Type}).Info("verification email resend queued")
	}

	return nil
}
