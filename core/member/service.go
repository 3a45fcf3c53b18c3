package member

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound     = errors.New("member not found")
	ErrNotConfirmed = errors.New("member deletion requires confirmation")
	ErrStaleFetch   = errors.New("stale fetch discarded")
)

type (
	// Directory is the upstream members collection.
	Directory interface {
		ListMembers(ctx context.Context) ([]Member, error)
		CreateMember(ctx context.Context, data NewMember) (Member, error)
		UpdateMember(ctx context.Context, id int, data UpdateMember) (Member, error)
		DeleteMember(ctx context.Context, id int) error
	}

	// Row is a roster member decorated for display.
	Row struct {
		Member
		AvatarColor string `json:"avatar_color"`
		SportColor  string `json:"sport_color"`
	}

	// Roster is the members page view state: a cached copy of the
	// upstream collection plus the current filter selection. The upstream
	// stays the source of truth; mutations reconcile the cache with the
	// server response.
	Roster struct {
		mu        sync.Mutex
		dir       Directory
		members   []Member
		selection QueryFilter
		fetchTag  uuid.UUID
	}
)

func NewRoster(dir Directory) *Roster {
	return &Roster{dir: dir}
}

// Refresh re-fetches the full member collection. Each call supersedes
// any fetch still in flight; a superseded fetch's result is discarded
// and reported as ErrStaleFetch.
func (r *Roster) Refresh(ctx context.Context) error {
	r.mu.Lock()
	tag := uuid.New()
	r.fetchTag = tag
	r.mu.Unlock()

	members, err := r.dir.ListMembers(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchTag != tag {
		return ErrStaleFetch
	}
	if err != nil {
		return pkgerrors.Wrap(err, "listing members")
	}
	r.members = members
	return nil
}

func (r *Roster) SetFilter(qf QueryFilter) {
	qf.Clean()
	r.mu.Lock()
	r.selection = qf
	r.mu.Unlock()
}

func (r *Roster) Selection() QueryFilter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection
}

// Rows derives the visible roster from the cached collection and the
// current selection. Pure with respect to the inputs; safe to call on
// every keystroke.
func (r *Roster) Rows() []Row {
	r.mu.Lock()
	members := make([]Member, len(r.members))
	copy(members, r.members)
	qf := r.selection
	r.mu.Unlock()

	filtered := Filter(members, qf)
	rows := make([]Row, 0, len(filtered))
	for _, m := range filtered {
		rows = append(rows, Row{
			Member:      m,
			AvatarColor: AvatarColor(m.Name),
			SportColor:  SportColor(m.Sport()),
		})
	}
	return rows
}

func (r *Roster) Get(id int) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return m, nil
		}
	}
	return Member{}, ErrNotFound
}

// Add registers a new member upstream and appends the stored record.
func (r *Roster) Add(ctx context.Context, data NewMember) (Member, error) {
	m, err := r.dir.CreateMember(ctx, data)
	if err != nil {
		return Member{}, pkgerrors.Wrap(err, "creating member")
	}
	r.mu.Lock()
	r.members = append(r.members, m)
	r.mu.Unlock()
	return m, nil
}

// Edit submits a full replacement and splices the server's record back
// into the cache. On failure the cache is left untouched.
func (r *Roster) Edit(ctx context.Context, id int, data UpdateMember) (Member, error) {
	m, err := r.dir.UpdateMember(ctx, id, data)
	if err != nil {
		return Member{}, pkgerrors.Wrap(err, "updating member")
	}
	r.mu.Lock()
	for i := range r.members {
		if r.members[i].ID == m.ID {
			r.members[i] = m
			break
		}
	}
	r.mu.Unlock()
	return m, nil
}

// Delete removes a member. Without confirmation no request is issued
// and no state changes.
func (r *Roster) Delete(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := r.dir.DeleteMember(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting member")
	}
	r.mu.Lock()
	for i := range r.members {
		if r.members[i].ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}
