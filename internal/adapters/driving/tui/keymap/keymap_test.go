package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("enter", km.Send))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("esc", km.Quit))
	assert.True(t, Matches("ctrl+s", km.Summarize))
	assert.True(t, Matches("ctrl+r", km.Risks))
	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("pgdown", km.ScrollDown))
}

func TestKeyMap_LettersAreFree(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				assert.Greater(t, len(k), 1, "single character key %q would swallow typing", k)
			}
		}
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	assert.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
}

func TestMatches_NoMatch(t *testing.T) {
	assert.False(t, Matches("x", DefaultKeyMap().Send))
}
