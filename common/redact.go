package common

import "strings"

// RedactInvite masks all but the first two characters of an invite code,
// so codes can be shown in warnings and audit logs without being usable.
func RedactInvite(code string) string {
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return code[:2] + strings.Repeat("*", len(code)-2)
}
