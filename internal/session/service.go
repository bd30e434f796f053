// Package session handles first-run setup, parent and child login, and app settings.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/pin"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Service gates access to parent and child views.
type Service struct {
	repo    *state.Repository
	codec   pin.Codec
	timeout time.Duration // zero disables parent session expiry
	log     *log.Logger
}

// NewService creates a session Service.
func NewService(repo *state.Repository, codec pin.Codec, parentTimeout time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{repo: repo, codec: codec, timeout: parentTimeout, log: logger.WithComponent(log.ComponentSession)}
}

// Setup completes the first-run wizard: currency and parent PIN.
func (s *Service) Setup(ctx context.Context, cur model.Currency, parentPIN string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if tx.State.SetupComplete {
			return model.NewValidationError("setup", "already complete")
		}
		if cur != model.CurrencyINR && cur != model.CurrencyUSD {
			return model.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", cur))
		}
		digest, err := pin.Hash(parentPIN)
		if err != nil {
			return err
		}
		tx.State.Currency = cur
		tx.State.ParentPinHash = digest
		tx.State.SetupComplete = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	s.log.Info("setup complete", "currency", cur)
	return nil
}

// SetupComplete reports whether the wizard has run.
func (s *Service) SetupComplete(ctx context.Context) (bool, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	return st.SetupComplete, nil
}

// ParentLogin starts a parent session. The recovery code is accepted.
func (s *Service) ParentLogin(ctx context.Context, parentPIN string) error {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !st.SetupComplete {
		return fmt.Errorf("%w: setup has not been completed", model.ErrUnauthorized)
	}
	if !s.codec.Verify(parentPIN, st.ParentPinHash) {
		s.log.Warn("parent login failed")
		return fmt.Errorf("%w: incorrect PIN", model.ErrUnauthorized)
	}
	if s.codec.IsRecoveryCode(parentPIN) {
		s.log.Warn("parent login with recovery code")
	}

	sess, err := s.repo.Session(ctx)
	if err != nil {
		return err
	}
	sess.ParentMode = true
	sess.ParentLoginTime = s.repo.Clock().Now()
	return s.repo.SetSession(ctx, sess)
}

// ChildLogin starts a child session. Children without a PIN log in directly;
// a wrong PIN notifies the parent.
func (s *Service) ChildLogin(ctx context.Context, childID, childPIN string) error {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !st.SetupComplete {
		return fmt.Errorf("%w: setup has not been completed", model.ErrUnauthorized)
	}
	c := st.Child(childID)
	if c == nil {
		return &model.NotFoundError{Kind: "child", ID: childID}
	}

	if c.HasPIN() {
		if !pin.ValidateFormat(childPIN) {
			return model.NewValidationError("pin", "must be exactly 4 digits")
		}
		if !s.codec.Verify(childPIN, c.PinHash) {
			s.log.Warn("child login failed", log.FieldChildID, c.ID)
			err := s.repo.Update(ctx, func(tx *state.Tx) error {
				tx.NotifyParent(model.Notification{
					Type:      model.NotifyFailedLogin,
					Message:   fmt.Sprintf("Failed login attempt on %s's account", c.Name),
					ChildID:   c.ID,
					ChildName: c.Name,
				})
				return nil
			})
			if err != nil {
				return fmt.Errorf("recording failed login: %w", err)
			}
			return fmt.Errorf("%w: incorrect PIN", model.ErrUnauthorized)
		}
	}

	sess, err := s.repo.Session(ctx)
	if err != nil {
		return err
	}
	sess.KidMode = true
	sess.CurrentChildID = c.ID
	return s.repo.SetSession(ctx, sess)
}

// Logout ends both sessions.
func (s *Service) Logout(ctx context.Context) error {
	return s.repo.SetSession(ctx, state.Session{})
}

// Current returns the persisted session. An expired parent session is reported as logged out.
func (s *Service) Current(ctx context.Context) (state.Session, error) {
	sess, err := s.repo.Session(ctx)
	if err != nil {
		return state.Session{}, err
	}
	if sess.ParentMode && s.expired(sess) {
		sess.ParentMode = false
		sess.ParentLoginTime = time.Time{}
	}
	return sess, nil
}

func (s *Service) expired(sess state.Session) bool {
	if s.timeout <= 0 {
		return false
	}
	return s.repo.Clock().Since(sess.ParentLoginTime) > s.timeout
}

// RequireParent fails with ErrUnauthorized unless a live parent session exists.
// An expired session is cleared.
func (s *Service) RequireParent(ctx context.Context) error {
	sess, err := s.repo.Session(ctx)
	if err != nil {
		return err
	}
	if !sess.ParentMode {
		return fmt.Errorf("%w: parent login required", model.ErrUnauthorized)
	}
	if s.expired(sess) {
		if err := s.repo.ClearParentSession(ctx); err != nil {
			return err
		}
		return fmt.Errorf("%w: parent session expired", model.ErrUnauthorized)
	}
	return nil
}

// RequireChild returns the logged-in child's ID or ErrUnauthorized.
func (s *Service) RequireChild(ctx context.Context) (string, error) {
	sess, err := s.repo.Session(ctx)
	if err != nil {
		return "", err
	}
	if !sess.KidMode || sess.CurrentChildID == "" {
		return "", fmt.Errorf("%w: child login required", model.ErrUnauthorized)
	}
	st, err := s.repo.Load(ctx)
	if err != nil {
		return "", err
	}
	if st.Child(sess.CurrentChildID) == nil {
		if err := s.repo.ClearChildSession(ctx); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: logged-in child no longer exists", model.ErrUnauthorized)
	}
	return sess.CurrentChildID, nil
}

// ChangeParentPIN replaces the parent PIN after verifying the current one.
func (s *Service) ChangeParentPIN(ctx context.Context, currentPIN, newPIN string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if !s.codec.Verify(currentPIN, tx.State.ParentPinHash) {
			return fmt.Errorf("%w: current PIN is incorrect", model.ErrUnauthorized)
		}
		digest, err := pin.Hash(newPIN)
		if err != nil {
			return err
		}
		if digest == tx.State.ParentPinHash {
			return model.NewValidationError("pin", "new PIN must differ from the current one")
		}
		tx.State.ParentPinHash = digest
		return nil
	})
	if err != nil {
		return fmt.Errorf("changing parent PIN: %w", err)
	}
	s.log.Info("parent PIN changed")
	return nil
}

// SetCurrency switches the display currency. Amounts are not converted.
func (s *Service) SetCurrency(ctx context.Context, cur model.Currency) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if cur != model.CurrencyINR && cur != model.CurrencyUSD {
			return model.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", cur))
		}
		if cur == tx.State.Currency {
			return model.NewValidationError("currency", fmt.Sprintf("already %s", cur))
		}
		tx.State.Currency = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting currency: %w", err)
	}
	return nil
}

// Reset wipes all application data.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("resetting: %w", err)
	}
	return nil
}
