package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shini4i/gsbwifi/internal/credentials"
	"github.com/shini4i/gsbwifi/internal/preflight"
	"github.com/shini4i/gsbwifi/internal/retry"
	"github.com/shini4i/gsbwifi/internal/session"
)

// Session is a transport owned by one attempt sequence.
type Session interface {
	Doer
	Close()
}

// Preflighter runs the check before a login sequence. *preflight.Advisor satisfies it.
type Preflighter interface {
	Check(ctx context.Context, fetcher preflight.Fetcher) (preflight.Report, error)
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Endpoints   Endpoints
	Credentials credentials.Provider
	Account     int
	Retry       *retry.Controller
	// Preflight is optional; nil skips the check.
	Preflight Preflighter
	// NewSession creates the transport for a sequence. Defaults to session.New
	// with default options.
	NewSession func() (Session, error)
}

// Service runs complete login, logout and status operations. Every operation
// uses a fresh session that is discarded when it returns.
type Service struct {
	endpoints  Endpoints
	creds      credentials.Provider
	account    int
	retry      *retry.Controller
	preflight  Preflighter
	newSession func() (Session, error)
}

// NewService creates a Service.
func NewService(opts ServiceOptions) *Service {
	s := &Service{
		endpoints:  opts.Endpoints,
		creds:      opts.Credentials,
		account:    opts.Account,
		retry:      opts.Retry,
		preflight:  opts.Preflight,
		newSession: opts.NewSession,
	}
	if s.account < 1 {
		s.account = 1
	}
	if s.retry == nil {
		s.retry = retry.New(retry.DefaultPolicy())
	}
	if s.newSession == nil {
		s.newSession = func() (Session, error) {
			return session.New(session.DefaultOptions())
		}
	}
	return s
}

// Login looks up credentials, runs the optional preflight and retries
// LoginOnce. The returned Result is always filled in; err is non-nil on failure.
func (s *Service) Login(ctx context.Context) (Result, error) {
	creds, err := s.lookupCredentials()
	if err != nil {
		return failure(err), err
	}

	sess, err := s.newSession()
	if err != nil {
		err = newAttemptError(ErrConfig, fmt.Sprintf(MsgSessionError, err), err)
		return failure(err), err
	}
	defer sess.Close()

	var warning string
	if s.preflight != nil {
		report, err := s.preflight.Check(ctx, sess)
		if err != nil {
			slog.Warn("Preflight check failed", "error", err)
			err = newAttemptError(ErrNetwork, ReasonOf(err), err)
			return failure(err), err
		}
		warning = report.Warning
	}

	client := NewClient(sess, s.endpoints)
	var result Result
	lastReason := ""
	err = s.retry.Run(ctx, func(ctx context.Context) error {
		r, err := client.LoginOnce(ctx, creds)
		if err != nil {
			lastReason = ReasonOf(err)
			if errors.Is(err, ErrConfig) {
				return retry.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if lastReason == "" {
			lastReason = MsgLoginMaxAttempts
		}
		return Result{Details: lastReason}, err
	}

	if warning != "" {
		result.Details = joinLines(fmt.Sprintf(MsgWarningPrefix, warning), result.Details)
	}
	slog.Info("Login succeeded", "headline", result.Headline)
	return result, nil
}

// Logout retries LogoutOnce on a fresh session.
func (s *Service) Logout(ctx context.Context) (Result, error) {
	sess, err := s.newSession()
	if err != nil {
		err = newAttemptError(ErrConfig, fmt.Sprintf(MsgSessionError, err), err)
		return failure(err), err
	}
	defer sess.Close()

	client := NewClient(sess, s.endpoints)
	var result Result
	lastReason := ""
	err = s.retry.Run(ctx, func(ctx context.Context) error {
		r, err := client.LogoutOnce(ctx)
		if err != nil {
			lastReason = ReasonOf(err)
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if lastReason == "" {
			lastReason = MsgLogoutMaxAttempts
		}
		return Result{Details: lastReason}, err
	}
	slog.Info("Logout succeeded", "details", result.Details)
	return result, nil
}

// Status reports the session state without submitting credentials.
func (s *Service) Status(ctx context.Context) (Status, error) {
	sess, err := s.newSession()
	if err != nil {
		return Status{}, newAttemptError(ErrConfig, fmt.Sprintf(MsgSessionError, err), err)
	}
	defer sess.Close()

	return NewClient(sess, s.endpoints).Status(ctx)
}

func (s *Service) lookupCredentials() (credentials.Credentials, error) {
	if s.creds == nil {
		return credentials.Credentials{}, newAttemptError(ErrConfig, MsgNoCredentials, credentials.ErrNotConfigured)
	}
	creds, err := s.creds.Lookup(s.account)
	if err != nil {
		if errors.Is(err, credentials.ErrNotConfigured) {
			return credentials.Credentials{}, newAttemptError(ErrConfig, MsgNoCredentials, err)
		}
		return credentials.Credentials{}, newAttemptError(ErrConfig, fmt.Sprintf(MsgCredentialsError, err), err)
	}
	if creds.Empty() {
		return credentials.Credentials{}, newAttemptError(ErrConfig, MsgNoCredentials, credentials.ErrNotConfigured)
	}
	return creds, nil
}

func failure(err error) Result {
	return Result{Details: ReasonOf(err)}
}
