package catalog

import "strings"

// GenreNone is the genre code for "no genre assigned".
const GenreNone uint8 = 0

// genreNames is the closed genre enumeration shared with the launcher.
// Codes are part of the on-disk contract; new genres may only be appended.
var genreNames = []string{
	"(None)",
	"Action",
	"Adventure",
	"Beat 'em Up",
	"Board Game",
	"Casino",
	"Compilation",
	"Construction and Management Simulation",
	"Education",
	"Fighting",
	"Flight Simulator",
	"Horror",
	"Life Simulation",
	"MMO",
	"Music",
	"Party",
	"Pinball",
	"Platform",
	"Puzzle",
	"Quiz",
	"Racing",
	"Role-Playing",
	"Sandbox",
	"Shooter",
	"Sports",
	"Stealth",
	"Strategy",
	"Vehicle Simulation",
	"Visual Novel",
}

// GenreCount is the number of named genres, excluding "(None)".
const GenreCount = 28

// GenreName returns the display name for a genre code. Codes outside the
// table fall back to "(None)"; historical files may carry codes added by a
// newer launcher build, and that must not break listing.
func GenreName(code uint8) string {
	if int(code) >= len(genreNames) {
		return genreNames[GenreNone]
	}
	return genreNames[code]
}

// GenreKnown reports whether code is inside the current enumeration.
func GenreKnown(code uint8) bool {
	return int(code) < len(genreNames)
}

// keyword fallbacks for external genre labels that don't match the table
// verbatim ("First Person Shooter" -> Shooter, and so on). Order matters:
// first hit wins.
var genreKeywords = []struct {
	keywords []string
	code     uint8
}{
	{[]string{"ACTION"}, 1},
	{[]string{"ADVENTURE"}, 2},
	{[]string{"BEAT", "BRAWL"}, 3},
	{[]string{"BOARD"}, 4},
	{[]string{"CASINO"}, 5},
	{[]string{"COMPILATION"}, 6},
	{[]string{"CONSTRUCTION", "MANAGEMENT", "BUILDING"}, 7},
	{[]string{"EDUCATION", "LEARNING"}, 8},
	{[]string{"FIGHTING"}, 9},
	{[]string{"FLIGHT"}, 10},
	{[]string{"HORROR"}, 11},
	{[]string{"MMO", "ONLINE"}, 13},
	{[]string{"MUSIC", "RHYTHM"}, 14},
	{[]string{"PARTY"}, 15},
	{[]string{"PINBALL"}, 16},
	{[]string{"PLATFORM"}, 17},
	{[]string{"PUZZLE"}, 18},
	{[]string{"QUIZ", "TRIVIA"}, 19},
	{[]string{"RACING", "DRIVING"}, 20},
	{[]string{"ROLE", "RPG"}, 21},
	{[]string{"SANDBOX"}, 22},
	{[]string{"SHOOT", "FPS", "SHMUP"}, 23},
	{[]string{"SPORT"}, 24},
	{[]string{"STEALTH"}, 25},
	{[]string{"STRATEG"}, 26},
	{[]string{"VISUAL NOVEL"}, 28},
}

// GenreCode resolves an external genre label to a code. Exact name match
// first, then case-insensitive, then keyword fallback; unknown labels map
// to GenreNone.
func GenreCode(name string) uint8 {
	name = strings.TrimSpace(name)
	if name == "" {
		return GenreNone
	}

	for code, n := range genreNames {
		if n == name {
			return uint8(code)
		}
	}

	upper := strings.ToUpper(name)
	for code, n := range genreNames {
		if strings.ToUpper(n) == upper {
			return uint8(code)
		}
	}

	// Compound simulation labels need both words present, so they can't
	// ride the single-keyword table.
	if strings.Contains(upper, "SIM") {
		if strings.Contains(upper, "LIFE") {
			return 12
		}
		if strings.Contains(upper, "VEHICLE") {
			return 27
		}
	}

	for _, g := range genreKeywords {
		for _, kw := range g.keywords {
			if strings.Contains(upper, kw) {
				return g.code
			}
		}
	}

	return GenreNone
}
