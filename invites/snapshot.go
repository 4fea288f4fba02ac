// Package invites attributes member joins to the invite that was used, and grants the role mapped to that invite.
//
// Discord does not say which invite a member joined with, it only exposes a use counter per invite.
// The Tracker keeps the last known counters for every guild and diffs them against a fresh copy on every join;
// the invite whose counter went up is the one that was used.
package invites

import "sort"

// Snapshot is the use count of every invite in a guild at one point in time.
type Snapshot map[string]int

// Delta is the use count increase per invite between two snapshots.
// Every value is strictly positive.
type Delta map[string]int

// Diff returns the invites whose use count increased between old and cur.
// Invites missing from old count from zero, invites missing from cur are ignored.
func Diff(old, cur Snapshot) Delta {
	d := make(Delta)
	for code, uses := range cur {
		if inc := uses - old[code]; inc > 0 {
			d[code] = inc
		}
	}
	return d
}

// Codes returns the invite codes in d, sorted.
func (d Delta) Codes() []string {
	codes := make([]string, 0, len(d))
	for code := range d {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
