package invites

import (
	"context"
	"testing"

	"emperror.dev/errors"
	"github.com/starshine-sys/inviteroles/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceTest struct {
	svc      *Service
	fetcher  *fakeFetcher
	mappings *fakeMappings
	granter  *fakeGranter
	reporter *fakeReporter
	recorder *fakeRecorder
}

func newServiceTest(t *testing.T) serviceTest {
	t.Helper()

	p, m, _, g, rep := newPolicy()
	m.roles["xyz123"] = roleID + 1

	f := &fakeFetcher{uses: map[string]int{"abcdef": 0, "xyz123": 0}}
	rec := &fakeRecorder{}
	svc := &Service{
		Tracker:  NewTracker(f, memory.New()),
		Policy:   p,
		Reporter: rep,
		Recorder: rec,
	}
	require.NoError(t, svc.GuildJoined(context.Background(), guildID))

	return serviceTest{svc, f, m, g, rep, rec}
}

func TestServiceMemberJoined(t *testing.T) {
	ctx := context.Background()

	t.Run("attributed join grants the role", func(t *testing.T) {
		st := newServiceTest(t)
		st.fetcher.set("abcdef", 1)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
		require.Len(t, st.granter.grants, 1)
		assert.Equal(t, roleID, st.granter.grants[0].RoleID)
		assert.Equal(t, 1, st.recorder.events[EventGranted])
	})

	t.Run("simultaneous joins grant nothing and warn", func(t *testing.T) {
		st := newServiceTest(t)
		st.fetcher.set("abcdef", 1)
		st.fetcher.set("xyz123", 1)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
		assert.Empty(t, st.granter.grants)
		require.Len(t, st.reporter.warnings, 1)
		assert.Contains(t, st.reporter.warnings[0], memberID.Mention())
		assert.Contains(t, st.reporter.warnings[0], "ab****")
		assert.Contains(t, st.reporter.warnings[0], "xy****")
		assert.NotContains(t, st.reporter.warnings[0], "abcdef")
		assert.Equal(t, 1, st.recorder.events[EventAmbiguous])

		// the second member of the pair sees no delta at all
		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID+1, false))
		assert.Empty(t, st.granter.grants)
	})

	t.Run("separate bursts get separate warnings", func(t *testing.T) {
		st := newServiceTest(t)
		st.fetcher.set("abcdef", 1)
		st.fetcher.set("xyz123", 1)
		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))

		st.fetcher.set("abcdef", 2)
		st.fetcher.set("xyz123", 2)
		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID+2, false))

		require.Len(t, st.reporter.warnings, 2)
		assert.NotEqual(t, st.reporter.warnings[0], st.reporter.warnings[1])
		assert.Contains(t, st.reporter.warnings[1], (memberID + 2).Mention())
		assert.Equal(t, 2, st.recorder.events[EventAmbiguous])
	})

	t.Run("human join without a delta warns", func(t *testing.T) {
		st := newServiceTest(t)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
		assert.Empty(t, st.granter.grants)
		assert.Len(t, st.reporter.warnings, 1)
		assert.Equal(t, 1, st.recorder.events[EventNoSignal])
	})

	t.Run("bot join without a delta is silent", func(t *testing.T) {
		st := newServiceTest(t)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, true))
		assert.Empty(t, st.granter.grants)
		assert.Empty(t, st.reporter.warnings)
	})

	t.Run("fetch failure is returned", func(t *testing.T) {
		st := newServiceTest(t)
		st.fetcher.err = errors.New("timeout")

		err := st.svc.MemberJoined(ctx, guildID, memberID, false)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Empty(t, st.granter.grants)
		assert.Equal(t, 1, st.recorder.events[EventFetchFailed])
	})

	t.Run("stale mapping is healed without error", func(t *testing.T) {
		st := newServiceTest(t)
		st.svc.Policy.Roles.(*fakeRoles).assignable[roleID] = false
		st.fetcher.set("abcdef", 1)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
		assert.Empty(t, st.granter.grants)
		assert.Equal(t, []string{"abcdef"}, st.mappings.removed)
		assert.Equal(t, 1, st.recorder.events[EventHealed])
	})

	t.Run("join without baseline is skipped", func(t *testing.T) {
		st := newServiceTest(t)
		require.NoError(t, st.svc.GuildLeft(ctx, guildID))
		st.fetcher.set("abcdef", 1)

		require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
		assert.Empty(t, st.granter.grants)
		assert.Equal(t, 1, st.recorder.events[EventNoBaseline])
	})
}

func TestServiceRoleDeleted(t *testing.T) {
	ctx := context.Background()
	st := newServiceTest(t)

	require.NoError(t, st.svc.RoleDeleted(ctx, guildID, roleID))
	for _, id := range st.mappings.roles {
		assert.NotEqual(t, roleID, id)
	}
	assert.Equal(t, 1, st.recorder.events[EventMappingPruned])

	// nothing left to grant for that invite
	st.fetcher.set("abcdef", 1)
	require.NoError(t, st.svc.MemberJoined(ctx, guildID, memberID, false))
	assert.Empty(t, st.granter.grants)
}

func TestServiceJoinDropped(t *testing.T) {
	st := newServiceTest(t)

	st.svc.JoinDropped(context.Background(), guildID, memberID)
	require.Len(t, st.reporter.warnings, 1)
	assert.Contains(t, st.reporter.warnings[0], memberID.Mention())
	assert.Equal(t, 1, st.recorder.events[EventJoinDropped])
	assert.Empty(t, st.granter.grants)
}
