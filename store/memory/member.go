package memory

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/store"
)

var _ store.MemberStore = (*Store)(nil)

func (s *Store) Member(_ context.Context, guildID discord.GuildID, userID discord.UserID) (discord.Member, error) {
	s.membersMu.RLock()
	defer s.membersMu.RUnlock()

	m, ok := s.members[guildID][userID]
	if !ok {
		return discord.Member{}, store.ErrNotFound
	}
	return m, nil
}

func (s *Store) SetMember(_ context.Context, guildID discord.GuildID, m discord.Member) error {
	s.membersMu.Lock()
	defer s.membersMu.Unlock()

	if s.members[guildID] == nil {
		s.members[guildID] = make(map[discord.UserID]discord.Member)
	}
	s.members[guildID][m.User.ID] = m
	return nil
}

func (s *Store) RemoveMembers(_ context.Context, guildID discord.GuildID) error {
	s.membersMu.Lock()
	defer s.membersMu.Unlock()

	delete(s.members, guildID)
	return nil
}
