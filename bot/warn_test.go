package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown(t *testing.T) {
	c := newCooldown(50 * time.Millisecond)
	defer c.close()

	assert.True(t, c.allow("1:warning"))
	assert.False(t, c.allow("1:warning"))
	assert.True(t, c.allow("2:warning"), "other guilds have their own cooldown")

	assert.Eventually(t, func() bool {
		return c.allow("1:warning")
	}, time.Second, 10*time.Millisecond)
}
