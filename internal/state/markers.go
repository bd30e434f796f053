package state

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format of the allowance marker.
const DateLayout = "2006-01-02"

var sessionKeys = []string{KeyParentMode, KeyParentLoginTime, KeyKidMode, KeyCurrentChildID}

// LastAllowanceCheck returns the date of the last allowance sweep, or "" if none ran.
func (r *Repository) LastAllowanceCheck(ctx context.Context) (string, error) {
	v, _, err := r.store.Get(ctx, KeyLastAllowanceCheck)
	if err != nil {
		return "", fmt.Errorf("reading allowance marker: %w", err)
	}
	return v, nil
}

// SetLastAllowanceCheck records that a sweep ran on day.
func (r *Repository) SetLastAllowanceCheck(ctx context.Context, day time.Time) error {
	if err := r.store.Set(ctx, KeyLastAllowanceCheck, day.Format(DateLayout)); err != nil {
		return fmt.Errorf("writing allowance marker: %w", err)
	}
	return nil
}

// Session is the persisted login state. The login time is stored as Unix milliseconds.
type Session struct {
	ParentMode      bool
	ParentLoginTime time.Time
	KidMode         bool
	CurrentChildID  string
}

// Session reads the login markers. Missing or malformed markers read as logged out.
func (r *Repository) Session(ctx context.Context) (Session, error) {
	var s Session
	vals := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, ok, err := r.store.Get(ctx, k)
		if err != nil {
			return Session{}, fmt.Errorf("reading %s: %w", k, err)
		}
		if ok {
			vals[k] = v
		}
	}

	s.ParentMode, _ = strconv.ParseBool(vals[KeyParentMode])
	if v := vals[KeyParentLoginTime]; v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.ParentLoginTime = time.UnixMilli(ms).UTC()
		}
	}
	s.KidMode, _ = strconv.ParseBool(vals[KeyKidMode])
	s.CurrentChildID = vals[KeyCurrentChildID]
	return s, nil
}

// SetSession writes the login markers, deleting those that are unset.
func (r *Repository) SetSession(ctx context.Context, s Session) error {
	vals := map[string]string{}
	if s.ParentMode {
		vals[KeyParentMode] = "true"
		vals[KeyParentLoginTime] = strconv.FormatInt(s.ParentLoginTime.UnixMilli(), 10)
	}
	if s.KidMode {
		vals[KeyKidMode] = "true"
		vals[KeyCurrentChildID] = s.CurrentChildID
	}

	for _, k := range sessionKeys {
		var err error
		if v, ok := vals[k]; ok {
			err = r.store.Set(ctx, k, v)
		} else {
			err = r.store.Delete(ctx, k)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}
	return nil
}

// ClearParentSession logs the parent out, leaving any child session intact.
func (r *Repository) ClearParentSession(ctx context.Context) error {
	s, err := r.Session(ctx)
	if err != nil {
		return err
	}
	s.ParentMode = false
	s.ParentLoginTime = time.Time{}
	return r.SetSession(ctx, s)
}

// ClearChildSession logs the child out, leaving any parent session intact.
func (r *Repository) ClearChildSession(ctx context.Context) error {
	s, err := r.Session(ctx)
	if err != nil {
		return err
	}
	s.KidMode = false
	s.CurrentChildID = ""
	return r.SetSession(ctx, s)
}
