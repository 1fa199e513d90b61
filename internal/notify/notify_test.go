package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotification_ShowAndExpire(t *testing.T) {
	n := New()
	assert.Equal(t, DefaultDuration, n.Duration)
	assert.Equal(t, Hidden, n.State())

	gen, started := n.Show()
	assert.True(t, started)
	assert.True(t, n.Visible())

	n.Expire(gen)
	assert.False(t, n.Visible())
	assert.Equal(t, "hidden", n.State().String())
}

func TestNotification_NonReentrant(t *testing.T) {
	n := New()
	gen, started := n.Show()
	assert.True(t, started)

	again, startedAgain := n.Show()
	assert.False(t, startedAgain, "second show while visible must not start a new timer")
	assert.Equal(t, gen, again)

	// 最初のタイマーで消える（延長されない）
	n.Expire(gen)
	assert.False(t, n.Visible())
}

func TestNotification_StaleExpiryIgnored(t *testing.T) {
	n := New()
	first, _ := n.Show()
	n.Dismiss()
	assert.False(t, n.Visible())

	second, started := n.Show()
	assert.True(t, started)
	assert.NotEqual(t, first, second)

	n.Expire(first)
	assert.True(t, n.Visible(), "expiry from a dismissed notification must not hide the new one")
	assert.Equal(t, "visible", n.State().String())

	n.Expire(second)
	assert.False(t, n.Visible())
}
