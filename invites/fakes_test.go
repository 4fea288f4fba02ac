package invites

import (
	"context"
	"sync"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/store"
)

type fakeFetcher struct {
	mu    sync.Mutex
	uses  map[string]int
	err   error
	calls int

	// if set, every fetch after the first counts as one use of this invite
	bump string
}

func (f *fakeFetcher) InviteUses(_ context.Context, _ discord.GuildID) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.bump != "" && f.calls > 1 {
		f.uses[f.bump]++
	}

	out := make(map[string]int, len(f.uses))
	for k, v := range f.uses {
		out[k] = v
	}
	return out, nil
}

func (f *fakeFetcher) set(code string, uses int) {
	f.mu.Lock()
	f.uses[code] = uses
	f.mu.Unlock()
}

type fakeMappings struct {
	roles   map[string]discord.RoleID
	removed []string
}

func (m *fakeMappings) InviteRole(_ context.Context, _ discord.GuildID, code string) (discord.RoleID, bool, error) {
	id, ok := m.roles[code]
	return id, ok, nil
}

func (m *fakeMappings) InviteRoles(_ context.Context, _ discord.GuildID) (map[string]discord.RoleID, error) {
	out := make(map[string]discord.RoleID, len(m.roles))
	for k, v := range m.roles {
		out[k] = v
	}
	return out, nil
}

func (m *fakeMappings) RemoveInviteRole(_ context.Context, _ discord.GuildID, code string) error {
	delete(m.roles, code)
	m.removed = append(m.removed, code)
	return nil
}

type fakeRoles struct {
	roles      map[discord.RoleID]discord.Role
	assignable map[discord.RoleID]bool
}

func (r *fakeRoles) Role(_ context.Context, _ discord.GuildID, id discord.RoleID) (discord.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return discord.Role{}, store.ErrNotFound
	}
	return role, nil
}

func (r *fakeRoles) CanAssign(_ context.Context, _ discord.GuildID, role discord.Role) (bool, error) {
	return r.assignable[role.ID], nil
}

type grant struct {
	UserID discord.UserID
	RoleID discord.RoleID
	Reason string
}

type fakeGranter struct {
	grants []grant
	err    error
}

func (g *fakeGranter) GrantRole(_ context.Context, _ discord.GuildID, userID discord.UserID, roleID discord.RoleID, reason string) error {
	if g.err != nil {
		return g.err
	}
	g.grants = append(g.grants, grant{userID, roleID, reason})
	return nil
}

type fakeReporter struct {
	warnings []string
}

func (r *fakeReporter) Warn(_ context.Context, _ discord.GuildID, msg string) {
	r.warnings = append(r.warnings, msg)
}

type fakeRecorder struct {
	events map[string]int
}

func (r *fakeRecorder) RegisterEvent(name string) {
	if r.events == nil {
		r.events = map[string]int{}
	}
	r.events[name]++
}
