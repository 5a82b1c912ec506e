package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFor(t *testing.T) {
	key := KeyFor("ambiance", "forest ambiance", 3, "https://opengameart.org/sites/default/files/birds%20dawn.ogg")

	assert.Equal(t, "ambiance", key.Category)
	assert.Equal(t, "forest_ambiance_3_birds_dawn.ogg", key.Filename)
	assert.Equal(t, "ambiance/forest_ambiance_3_birds_dawn.ogg", key.String())
}

func TestKeyForIsStable(t *testing.T) {
	link := "/sites/default/files/growl.wav"
	assert.Equal(t, KeyFor("npc", "monster growl", 1, link), KeyFor("npc", "monster growl", 1, link))
	assert.NotEqual(t, KeyFor("npc", "monster growl", 1, link), KeyFor("npc", "monster growl", 2, link))
}

func TestQuerySlug(t *testing.T) {
	tests := map[string]string{
		"forest ambiance":  "forest_ambiance",
		"  bat   screech ": "bat_screech",
		"rock/roll & more": "rock_roll_more",
		"https://opengameart.org/content/ocean-sounds":  "ocean-sounds",
		"https://opengameart.org/content/ocean-sounds/": "ocean-sounds",
		"https://opengameart.org":                       "opengameart.org",
		"???":                                           "query",
	}

	for query, want := range tests {
		assert.Equal(t, want, QuerySlug(query), query)
	}
}

func TestBasename(t *testing.T) {
	tests := map[string]string{
		"/sites/default/files/wind.ogg":                      "wind.ogg",
		"https://opengameart.org/sites/default/files/a b.mp3": "a_b.mp3",
		"/sites/default/files/Wind%20Loop.WAV":               "Wind_Loop.WAV",
		"/sites/default/files/":                              "files",
		"/":                                                  "audio",
		"":                                                   "audio",
	}

	for link, want := range tests {
		assert.Equal(t, want, Basename(link), link)
	}
}
