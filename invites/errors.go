package invites

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common"
)

const (
	// ErrNoBaseline is returned when there was no earlier snapshot to compare against.
	// The fresh snapshot is stored, so the next join can be attributed.
	ErrNoBaseline = errors.Sentinel("no earlier invite snapshot")
	// ErrAmbiguous means more than one invite was used since the last refresh.
	ErrAmbiguous = errors.Sentinel("more than one invite used between refreshes")
	// ErrStaleMapping means an invite role can't be granted anymore and was removed.
	ErrStaleMapping = errors.Sentinel("invite role can no longer be granted")
)

// FetchError is returned when the current invites couldn't be fetched.
// The stored snapshot is left untouched.
type FetchError struct {
	GuildID discord.GuildID
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching invites for %v: %v", e.GuildID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StaleMappingError is returned when a mapped role was deleted or outranks the bot.
type StaleMappingError struct {
	Code    string
	RoleID  discord.RoleID
	Outcome Outcome
}

func (e *StaleMappingError) Error() string {
	return fmt.Sprintf("invite role %v for invite %v: %v", e.RoleID, common.RedactInvite(e.Code), e.Outcome)
}

func (e *StaleMappingError) Is(target error) bool { return target == ErrStaleMapping }

// GrantError is returned when the grant request itself failed.
// The mapping is kept, as the failure may be temporary.
type GrantError struct {
	UserID discord.UserID
	RoleID discord.RoleID
	Err    error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("granting role %v to %v: %v", e.RoleID, e.UserID, e.Err)
}

func (e *GrantError) Unwrap() error { return e.Err }
