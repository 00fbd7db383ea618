// Package reconcile keeps the client-cached profile consistent across
// partial server responses and local edits. The server routinely echoes
// back only the fields it was sent; the engine's job is to merge those
// echoes into the richer local cache without ever losing the fields the
// response omitted (saved-item lists, transcript files).
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
	"github.com/campusorient/discovery-sync/internal/session"
)

// State is the engine's position in the profile lifecycle.
type State int

const (
	// StateUnloaded means no profile has been materialized yet.
	StateUnloaded State = iota
	// StateLoaded means a profile is cached and displayable.
	StateLoaded
	// StateSaving means an update round trip is in flight.
	StateSaving
)

// ErrUpdateInFlight rejects an overlapping update; interleaved merges
// would produce a result reflecting neither request's intent.
var ErrUpdateInFlight = errors.New("profile update already in flight")

// API is the wire surface the engine drives. ProfileService implements
// it; tests substitute mocks.
type API interface {
	FetchProfile(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, patch model.ProfilePatch, method string) (json.RawMessage, error)
	UploadTranscript(ctx context.Context, filename string, r io.Reader) (*model.TranscriptFile, error)
	DeleteTranscript(ctx context.Context, fileURL string) error
}

// Sessions is the slice of the session manager the engine needs: read
// the cached user, and replace it after a merge. The engine is the sole
// writer of the cached user's profile sub-object.
type Sessions interface {
	Get(ctx context.Context) *session.Session
	SetUser(ctx context.Context, user *model.User) error
}

// Engine owns the cached profile and its lifecycle.
type Engine struct {
	api      API
	sessions Sessions
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	cached *model.User

	fetches singleflight.Group
}

// New constructs an engine in the Unloaded state.
func New(apiClient API, sessions Sessions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{api: apiClient, sessions: sessions, logger: logger}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Saving reports whether an update is in flight, for UI gating.
func (e *Engine) Saving() bool {
	return e.State() == StateSaving
}

// Fetch returns the profile, loading it on first use: from the session
// cache when one exists, otherwise from the server (populating the
// cache). Concurrent first loads collapse into one request.
func (e *Engine) Fetch(ctx context.Context) (*model.User, error) {
	e.mu.Lock()
	if e.state != StateUnloaded && e.cached != nil {
		u := cloneUser(e.cached)
		e.mu.Unlock()
		return u, nil
	}
	e.mu.Unlock()

	if s := e.sessions.Get(ctx); s != nil && s.User != nil {
		e.mu.Lock()
		e.cached = cloneUser(s.User)
		e.state = StateLoaded
		u := cloneUser(e.cached)
		e.mu.Unlock()
		return u, nil
	}

	return e.refresh(ctx)
}

// ForceRefresh discards the cache and reloads from the server.
func (e *Engine) ForceRefresh(ctx context.Context) (*model.User, error) {
	return e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) (*model.User, error) {
	v, err, _ := e.fetches.Do("profile", func() (any, error) {
		user, err := e.api.FetchProfile(ctx)
		if err != nil {
			return nil, err
		}
		if err = e.sessions.SetUser(ctx, user); err != nil {
			return nil, err
		}

		e.mu.Lock()
		e.cached = cloneUser(user)
		if e.state == StateUnloaded {
			e.state = StateLoaded
		}
		e.mu.Unlock()
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneUser(v.(*model.User)), nil
}

// Update drives one profile update round trip: PATCH first, one PUT
// retry when the verb itself failed, then a cache-preserving merge of
// whatever the server echoed. On failure the previously displayed
// profile stays intact.
func (e *Engine) Update(ctx context.Context, patch model.ProfilePatch) (*model.User, error) {
	if _, err := e.Fetch(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.state == StateSaving {
		e.mu.Unlock()
		return nil, ErrUpdateInFlight
	}
	e.state = StateSaving
	e.mu.Unlock()

	raw, err := e.api.UpdateProfile(ctx, patch, http.MethodPatch)
	if err != nil && verbFallbackEligible(err) {
		// Backend verb support is not uniform; try the full-replace
		// verb against the same endpoint before surfacing an error.
		e.logger.WarnContext(ctx, "profile patch failed, retrying with put",
			"error_class", api.Classify(err))
		raw, err = e.api.UpdateProfile(ctx, patch, http.MethodPut)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateLoaded

	if err != nil {
		return nil, err
	}

	// Merge into the live cache rather than a pre-update snapshot: a
	// transcript upload or delete that completed while this round trip
	// was on the wire must survive the echo.
	merged, err := mergeUser(e.cached, raw)
	if err != nil {
		return nil, err
	}
	if err = e.sessions.SetUser(ctx, merged); err != nil {
		return nil, err
	}
	e.cached = merged
	return cloneUser(merged), nil
}

// UploadFile sends one transcript and appends the returned descriptor
// to the cached file list. The upload endpoint returns only the new
// file, so this is always an additive merge, never a replace.
func (e *Engine) UploadFile(ctx context.Context, filename string, r io.Reader) (*model.TranscriptFile, error) {
	if _, err := e.Fetch(ctx); err != nil {
		return nil, err
	}

	file, err := e.api.UploadTranscript(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := cloneUser(e.cached)
	if next.Profile == nil {
		next.Profile = &model.Profile{}
	}
	next.Profile.TranscriptFiles = append(next.Profile.TranscriptFiles, *file)

	if err = e.sessions.SetUser(ctx, next); err != nil {
		return nil, err
	}
	e.cached = next
	return file, nil
}

// DeleteFile removes exactly the entry whose URL matches; the URL is
// the file's identity key.
func (e *Engine) DeleteFile(ctx context.Context, fileURL string) error {
	if _, err := e.Fetch(ctx); err != nil {
		return err
	}

	if err := e.api.DeleteTranscript(ctx, fileURL); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := cloneUser(e.cached)
	if next.Profile != nil {
		kept := next.Profile.TranscriptFiles[:0]
		for _, f := range next.Profile.TranscriptFiles {
			if f.URL != fileURL {
				kept = append(kept, f)
			}
		}
		next.Profile.TranscriptFiles = kept
	}

	if err := e.sessions.SetUser(ctx, next); err != nil {
		return err
	}
	e.cached = next
	return nil
}

// SaveProgram adds a program to the saved list via an update round
// trip. Already-saved ids are a no-op without a network call.
func (e *Engine) SaveProgram(ctx context.Context, programID int64) (*model.User, error) {
	return e.updateSavedList(ctx, programID, true, false)
}

// RemoveSavedProgram drops a program from the saved list.
func (e *Engine) RemoveSavedProgram(ctx context.Context, programID int64) (*model.User, error) {
	return e.updateSavedList(ctx, programID, false, false)
}

// SaveUniversity adds a university to the saved list.
func (e *Engine) SaveUniversity(ctx context.Context, universityID int64) (*model.User, error) {
	return e.updateSavedList(ctx, universityID, true, true)
}

// RemoveSavedUniversity drops a university from the saved list.
func (e *Engine) RemoveSavedUniversity(ctx context.Context, universityID int64) (*model.User, error) {
	return e.updateSavedList(ctx, universityID, false, true)
}

func (e *Engine) updateSavedList(ctx context.Context, id int64, add, universities bool) (*model.User, error) {
	current, err := e.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	list := current.SavedPrograms
	if universities {
		list = current.SavedUniversities
	}

	next, changed := toggleID(list, id, add)
	if !changed {
		return current, nil
	}

	patch := model.ProfilePatch{}
	if universities {
		patch.SavedUniversities = &next
	} else {
		patch.SavedPrograms = &next
	}
	return e.Update(ctx, patch)
}

func toggleID(list []int64, id int64, add bool) ([]int64, bool) {
	if add {
		for _, v := range list {
			if v == id {
				return list, false
			}
		}
		return append(append([]int64{}, list...), id), true
	}

	out := make([]int64, 0, len(list))
	removed := false
	for _, v := range list {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

// verbFallbackEligible restricts the PATCH→PUT retry to failures that
// could plausibly be about the verb. A structured rejection of the
// payload or an expired session would fail identically under PUT.
func verbFallbackEligible(err error) bool {
	var ve *api.ValidationError
	var ae *api.AuthenticationError
	return !errors.As(err, &ve) && !errors.As(err, &ae)
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		// User round-trips by construction; treat failure as a bug.
		panic("reconcile: clone user: " + err.Error())
	}
	var out model.User
	if err := json.Unmarshal(raw, &out); err != nil {
		panic("reconcile: clone user: " + err.Error())
	}
	return &out
}
