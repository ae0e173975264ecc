package catalog

// Field widths of the on-disk game record. These are the launcher's binary
// contract: external tools read GAMES.DAT with exactly these widths, so
// they must never change without a format migration.
const (
	TitleWidth     = 50
	PathWidth      = 80
	CommandWidth   = 13
	ArgsWidth      = 60
	PublisherWidth = 30
	YearWidth      = 4

	// RecordSize is the total size of one encoded game record in bytes,
	// including trailing padding.
	RecordSize = 256
)

// Legacy (digital/PCM) sound hardware bits.
const (
	SoundPCSpeaker uint8 = 1 << iota
	SoundTandy
	SoundCovox
	SoundDisney
	SoundSBDigital
	SoundGUSDigital
)

// FM synthesis sound hardware bits.
const (
	FMAdLib uint8 = 1 << iota
	FMSoundBlaster
	FMSBPro
	FMSB16
	FMAWE32
	FMGUS
	FMPAS
)

// MIDI sound hardware bits.
const (
	MIDIMPU401 uint8 = 1 << iota
	MIDIGeneralMIDI
	MIDIMT32
	MIDISC55
)

// Graphics hardware bits.
const (
	GfxHercules uint8 = 1 << iota
	GfxCGA
	GfxEGA
	GfxTandy
	GfxVGA
	GfxSVGA
)

// LegacySoundNames maps legacy sound bits to display names.
var LegacySoundNames = map[uint8]string{
	SoundPCSpeaker:  "pcspeaker",
	SoundTandy:      "tandy",
	SoundCovox:      "covox",
	SoundDisney:     "disney",
	SoundSBDigital:  "sbdigital",
	SoundGUSDigital: "gusdigital",
}

// FMSoundNames maps FM sound bits to display names.
var FMSoundNames = map[uint8]string{
	FMAdLib:        "adlib",
	FMSoundBlaster: "sb",
	FMSBPro:        "sbpro",
	FMSB16:         "sb16",
	FMAWE32:        "awe32",
	FMGUS:          "gus",
	FMPAS:          "pas",
}

// MIDISoundNames maps MIDI sound bits to display names.
var MIDISoundNames = map[uint8]string{
	MIDIMPU401:      "mpu401",
	MIDIGeneralMIDI: "gm",
	MIDIMT32:        "mt32",
	MIDISC55:        "sc55",
}

// GraphicsNames maps graphics bits to display names.
var GraphicsNames = map[uint8]string{
	GfxHercules: "hercules",
	GfxCGA:      "cga",
	GfxEGA:      "ega",
	GfxTandy:    "tandy16",
	GfxVGA:      "vga",
	GfxSVGA:     "svga",
}

// Entry is one cataloged title. Text fields are truncated to their declared
// widths when encoded; see codec.go for the exact layout.
type Entry struct {
	// Title is the display name and the identity key for fuzzy matching.
	Title string

	// Path, Command and Args describe how to launch the title. They are
	// opaque to this tool and owned by the launcher's editor.
	Path    string
	Command string
	Args    string

	// LegacySound, FMSound and MIDISound are independent capability bit
	// sets; a title may declare any combination of bits per set.
	LegacySound uint8
	FMSound     uint8
	MIDISound   uint8

	// Graphics is the supported display hardware bit set.
	Graphics uint8

	Publisher string

	// Year is kept as text to tolerate ranges and unknowns ("199?").
	Year string

	// Genre is an index into the genre table, 0 = none.
	Genre uint8

	// Timing is an opaque slowdown tuning value consumed by the launcher.
	Timing uint16

	// RequiresCD marks titles that need removable media present.
	RequiresCD bool

	// Deleted is the soft-delete tombstone. Tombstoned records stay in the
	// file so that positions remain stable identities.
	Deleted bool
}
