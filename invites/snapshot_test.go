package invites

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  Snapshot
		cur  Snapshot
		want Delta
	}{
		{
			name: "no change",
			old:  Snapshot{"abc": 3, "xyz": 0},
			cur:  Snapshot{"abc": 3, "xyz": 0},
			want: Delta{},
		},
		{
			name: "single use",
			old:  Snapshot{"abc": 3, "xyz": 1},
			cur:  Snapshot{"abc": 4, "xyz": 1},
			want: Delta{"abc": 1},
		},
		{
			name: "new invite counts from zero",
			old:  Snapshot{"abc": 3},
			cur:  Snapshot{"abc": 3, "new": 2},
			want: Delta{"new": 2},
		},
		{
			name: "new unused invite is omitted",
			old:  Snapshot{"abc": 3},
			cur:  Snapshot{"abc": 3, "new": 0},
			want: Delta{},
		},
		{
			name: "deleted invite is ignored",
			old:  Snapshot{"abc": 3, "gone": 5},
			cur:  Snapshot{"abc": 3},
			want: Delta{},
		},
		{
			name: "decrease is ignored",
			old:  Snapshot{"abc": 3},
			cur:  Snapshot{"abc": 1},
			want: Delta{},
		},
		{
			name: "empty old",
			old:  nil,
			cur:  Snapshot{"abc": 1, "xyz": 0},
			want: Delta{"abc": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.old, tt.cur))
		})
	}
}

func TestDiffProperty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	codes := []string{"a", "b", "c", "d", "e", "f"}

	random := func() Snapshot {
		s := Snapshot{}
		for _, c := range codes {
			if r.Intn(3) == 0 {
				continue
			}
			s[c] = r.Intn(5)
		}
		return s
	}

	for i := 0; i < 500; i++ {
		old, cur := random(), random()
		d := Diff(old, cur)

		for code, inc := range d {
			assert.Greater(t, inc, 0)
			assert.Equal(t, cur[code]-old[code], inc)
		}
		for code, uses := range cur {
			if uses > old[code] {
				assert.Contains(t, d, code)
			} else {
				assert.NotContains(t, d, code)
			}
		}
	}
}

func TestDeltaCodes(t *testing.T) {
	assert.Equal(t, []string{"abc", "mno", "xyz"}, Delta{"xyz": 1, "abc": 2, "mno": 1}.Codes())
	assert.Empty(t, Delta{}.Codes())
}
