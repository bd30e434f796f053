package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/allowance"
	"github.com/piggybank-dev/piggybank/internal/bank"
	"github.com/piggybank-dev/piggybank/internal/config"
	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/gitops"
	"github.com/piggybank-dev/piggybank/internal/kv"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/pin"
	"github.com/piggybank-dev/piggybank/internal/session"
	"github.com/piggybank-dev/piggybank/internal/state"
	"github.com/piggybank-dev/piggybank/internal/withdrawal"
)

// app holds the services for one CLI invocation.
type app struct {
	homeFlag string
	clock    clockwork.Clock

	home        string
	cfg         *config.Config
	log         *log.Logger
	store       kv.Store
	ledger      *ledger.File
	repo        *state.Repository
	bank        *bank.Service
	withdrawals *withdrawal.Service
	sessions    *session.Service
	allowances  *allowance.Engine
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string) error

// run wraps a command body: open the store, credit due allowances, run, then
// snapshot the data directory if the command changed state.
func (a *app) run(mutates bool, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := a.open(cmd); err != nil {
			return err
		}
		defer a.close()

		if err := a.sweep(ctx, cmd.OutOrStdout()); err != nil {
			a.log.Warn("allowance sweep failed; run 'piggybank check'", log.FieldError, err)
		}
		if err := fn(ctx, cmd, args); err != nil {
			return err
		}
		if mutates {
			a.snapshot(ctx, cmd.CommandPath())
		}
		return nil
	}
}

func (a *app) open(cmd *cobra.Command) error {
	home, err := config.ResolveHome(a.homeFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return err
	}

	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	logger := log.New(lc)

	if cfg.Storage.Backend != kv.BackendMemory {
		if err := os.MkdirAll(home, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	store, err := kv.Open(cfg.Storage.Backend, cfg.StoragePath(home))
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}

	a.home = home
	a.cfg = cfg
	a.log = logger
	a.store = store
	a.ledger = ledger.NewFile(home)
	a.repo = state.NewRepository(store, state.Options{Clock: a.clock, Logger: logger, Ledger: a.ledger})
	a.bank = bank.NewService(a.repo, logger)
	a.withdrawals = withdrawal.NewService(a.repo, logger)
	a.sessions = session.NewService(a.repo, pin.NewCodec(cfg.Security.RecoveryCode), cfg.Session.ParentTimeout, logger)
	a.allowances = allowance.NewEngine(a.repo, logger)
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store", log.FieldError, err)
	}
	a.store = nil
}

// sweep runs the once-a-day allowance pass that every app load performs.
func (a *app) sweep(ctx context.Context, w io.Writer) error {
	done, err := a.sessions.SetupComplete(ctx)
	if err != nil || !done {
		return err
	}
	paid, err := a.allowances.Sweep(ctx)
	if err != nil {
		return err
	}
	cur, err := a.currency(ctx)
	if err != nil {
		return err
	}
	for _, p := range paid {
		fmt.Fprintf(w, "Allowance: %s received %s\n", p.ChildName, currency.Format(p.Amount, cur))
	}
	return nil
}

func (a *app) snapshot(ctx context.Context, what string) {
	if !a.cfg.Git.AutoCommit || a.cfg.Storage.Backend != kv.BackendDir {
		return
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.Snapshot(ctx, a.home, what, author)
	if err != nil {
		a.log.Warn("git snapshot failed", log.FieldError, err)
		return
	}
	if hash != "" {
		a.log.Debug("git snapshot", "commit", hash)
	}
}

func (a *app) currency(ctx context.Context) (model.Currency, error) {
	st, err := a.repo.Load(ctx)
	if err != nil {
		return "", err
	}
	return st.Currency, nil
}

func (a *app) format(ctx context.Context, amount decimal.Decimal) string {
	cur, err := a.currency(ctx)
	if err != nil {
		cur = model.CurrencyINR
	}
	return currency.Format(amount, cur)
}

// requireSetup fails until the setup wizard has run.
func (a *app) requireSetup(ctx context.Context) error {
	done, err := a.sessions.SetupComplete(ctx)
	if err != nil {
		return err
	}
	if !done {
		return errors.New("piggybank is not set up yet; run 'piggybank setup'")
	}
	return nil
}

func (a *app) requireParent(ctx context.Context) error {
	if err := a.requireSetup(ctx); err != nil {
		return err
	}
	return a.sessions.RequireParent(ctx)
}

// actingChild resolves which child a command applies to. A parent may name
// any child; a logged-in child may only act on themself.
func (a *app) actingChild(ctx context.Context, ref string) (model.Child, error) {
	if err := a.requireSetup(ctx); err != nil {
		return model.Child{}, err
	}
	if a.sessions.RequireParent(ctx) == nil {
		if ref == "" {
			return model.Child{}, model.NewValidationError("child", "name the child with --child")
		}
		return a.bank.FindChild(ctx, ref)
	}

	childID, err := a.sessions.RequireChild(ctx)
	if err != nil {
		return model.Child{}, fmt.Errorf("%w: log in as a parent or a child first", model.ErrUnauthorized)
	}
	c, err := a.bank.Child(ctx, childID)
	if err != nil {
		return model.Child{}, err
	}
	if ref != "" && c.ID != ref && !strings.EqualFold(c.Name, ref) {
		return model.Child{}, fmt.Errorf("%w: logged in as %s", model.ErrUnauthorized, c.Name)
	}
	return c, nil
}

// parentChild resolves a child for a parent-only command.
func (a *app) parentChild(ctx context.Context, ref string) (model.Child, error) {
	if err := a.requireParent(ctx); err != nil {
		return model.Child{}, err
	}
	return a.bank.FindChild(ctx, ref)
}

// parseAmount accepts "12.50", "₹12.50" or "$12.50". Unparseable input reads as zero,
// which the services reject.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	for _, cur := range currency.Supported() {
		s = strings.TrimPrefix(s, currency.Symbol(cur))
	}
	return currency.ParseAmount(strings.ReplaceAll(s, ",", ""))
}
