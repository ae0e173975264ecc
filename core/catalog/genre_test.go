package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenreCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint8
	}{
		{"empty", "", 0},
		{"exact match", "Strategy", 26},
		{"exact match none", "(None)", 0},
		{"case-insensitive", "sTrAtEgY", 26},
		{"keyword action", "Action Platformer", 1},
		{"keyword shooter fps", "First Person Shooter", 23},
		{"keyword rpg", "Western RPG", 21},
		{"keyword education", "Learning Software", 8},
		{"life simulation", "Life Sim", 12},
		{"vehicle simulation", "Vehicle Simulator", 27},
		{"construction", "City Building", 7},
		{"unknown", "Interactive Screensaver", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenreCode(tt.in))
		})
	}
}

func TestGenreName(t *testing.T) {
	assert.Equal(t, "(None)", GenreName(0))
	assert.Equal(t, "Action", GenreName(1))
	assert.Equal(t, "Visual Novel", GenreName(28))

	// Codes beyond the table come from newer launcher builds; display them
	// as none instead of failing.
	assert.Equal(t, "(None)", GenreName(29))
	assert.Equal(t, "(None)", GenreName(255))
}

func TestGenreKnown(t *testing.T) {
	assert.True(t, GenreKnown(0))
	assert.True(t, GenreKnown(28))
	assert.False(t, GenreKnown(29))
}

func TestGenreRoundTrip(t *testing.T) {
	// Every named genre resolves back to its own code.
	for code := uint8(1); code <= GenreCount; code++ {
		assert.Equal(t, code, GenreCode(GenreName(code)), "genre %s", GenreName(code))
	}
}
