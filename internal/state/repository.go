// Package state persists the application document and its side records in a kv.Store.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/kv"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
)

// Store keys.
const (
	KeyAppState           = "piggybank_app_state"
	KeyLastAllowanceCheck = "piggybank_last_allowance_check"
	KeyParentMode         = "parentMode"
	KeyParentLoginTime    = "parentLoginTime"
	KeyKidMode            = "kidMode"
	KeyCurrentChildID     = "currentChildId"
)

// LedgerWriter receives ledger entries after a successful Update.
type LedgerWriter interface {
	Append(entries []ledger.Entry) error
}

// Options configures a Repository. Zero values fall back to a real clock,
// a discarding logger and no ledger.
type Options struct {
	Clock  clockwork.Clock
	Logger *log.Logger
	Ledger LedgerWriter
}

// Repository reads and writes the application state.
type Repository struct {
	store  kv.Store
	clock  clockwork.Clock
	log    *log.Logger
	ledger LedgerWriter
}

// NewRepository creates a Repository over store.
func NewRepository(store kv.Store, opts Options) *Repository {
	r := &Repository{store: store, clock: opts.Clock, log: opts.Logger, ledger: opts.Ledger}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.log == nil {
		r.log = log.Discard()
	}
	r.log = r.log.WithComponent(log.ComponentStorage)
	return r
}

// Clock returns the clock used to stamp transactions.
func (r *Repository) Clock() clockwork.Clock {
	return r.clock
}

// Load returns the current document. A missing document yields the default
// state; an unreadable one is logged and replaced by the default.
func (r *Repository) Load(ctx context.Context) (*model.AppState, error) {
	raw, ok, err := r.store.Get(ctx, KeyAppState)
	if err != nil {
		return nil, fmt.Errorf("reading app state: %w", err)
	}
	if !ok {
		return model.DefaultState(), nil
	}

	st, err := Decode(raw)
	if err != nil {
		r.log.Warn("discarding unreadable app state", log.FieldKey, KeyAppState, log.FieldError, err)
		return model.DefaultState(), nil
	}
	return st, nil
}

// Save replaces the stored document.
func (r *Repository) Save(ctx context.Context, st *model.AppState) error {
	raw, err := Encode(st)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, KeyAppState, raw); err != nil {
		return fmt.Errorf("writing app state: %w", err)
	}
	return nil
}

// Decode parses a stored document. Parse failures wrap model.ErrStateCorrupt.
func Decode(raw string) (*model.AppState, error) {
	var st model.AppState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStateCorrupt, err)
	}
	normalize(&st)
	return &st, nil
}

// Encode serializes a document for storage.
func Encode(st *model.AppState) (string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encoding app state: %w", err)
	}
	return string(data), nil
}

// normalize fills in fields older or hand-edited documents may lack.
func normalize(st *model.AppState) {
	if st.Currency == "" {
		st.Currency = model.CurrencyINR
	}
	if st.Children == nil {
		st.Children = []model.Child{}
	}
	if st.ParentNotifications == nil {
		st.ParentNotifications = []model.Notification{}
	}
	if st.WithdrawalRequests == nil {
		st.WithdrawalRequests = []model.WithdrawalRequest{}
	}
	for i := range st.Children {
		c := &st.Children[i]
		if c.Categories == nil {
			c.Categories = []model.Category{}
		}
		if c.Goals == nil {
			c.Goals = []model.Goal{}
		}
		if c.Notifications == nil {
			c.Notifications = []string{}
		}
	}
}

// Update runs fn against a freshly loaded document and persists the result.
// If fn fails or the result breaks an invariant the loaded document did not
// already break, nothing is written.
func (r *Repository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	st, err := r.Load(ctx)
	if err != nil {
		return err
	}
	before := Validate(st)

	tx := &Tx{State: st, now: r.clock.Now()}
	if err := fn(tx); err != nil {
		return err
	}
	if vs := Validate(tx.State).Since(before); len(vs) > 0 {
		return vs
	}

	for _, n := range tx.notifications {
		if err := r.SaveNotification(ctx, n); err != nil {
			return err
		}
	}
	if err := r.Save(ctx, tx.State); err != nil {
		return err
	}

	if r.ledger != nil && len(tx.entries) > 0 {
		if err := r.ledger.Append(tx.entries); err != nil {
			r.log.Warn("appending ledger entries", log.FieldError, err)
		}
	}
	return nil
}

// View loads the document for read-only use.
func (r *Repository) View(ctx context.Context, fn func(st *model.AppState) error) error {
	st, err := r.Load(ctx)
	if err != nil {
		return err
	}
	return fn(st)
}

// Reset removes the document, every notification record, the allowance marker
// and the session markers.
func (r *Repository) Reset(ctx context.Context) error {
	keys, err := r.store.Keys(ctx, id.NotificationPrefix)
	if err != nil {
		return fmt.Errorf("listing notifications: %w", err)
	}
	keys = append(keys, KeyAppState, KeyLastAllowanceCheck)
	keys = append(keys, sessionKeys...)

	for _, k := range keys {
		if err := r.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	r.log.Info("state reset", "keys", len(keys))
	return nil
}

// Violations is the error returned by Update when the new state breaks invariants.
type Violations []Violation

func (vs Violations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return "state invariants violated: " + strings.Join(msgs, "; ")
}

// Since returns the violations not already present in prev.
func (vs Violations) Since(prev Violations) Violations {
	if len(prev) == 0 {
		return vs
	}
	seen := make(map[Violation]bool, len(prev))
	for _, v := range prev {
		seen[v] = true
	}
	var out Violations
	for _, v := range vs {
		if !seen[v] {
			out = append(out, v)
		}
	}
	return out
}
