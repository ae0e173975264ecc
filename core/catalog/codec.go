package catalog

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// The on-disk record layout (offsets within a 256-byte record):
//
//	  0  title     String[50]
//	 51  path      String[80]
//	132  command   String[13]
//	146  args      String[60]
//	207  legacy sound flags   byte
//	208  FM sound flags       byte
//	209  MIDI sound flags     byte
//	210  graphics flags       byte
//	211  publisher String[30]
//	242  year      String[4]
//	247  genre code           byte
//	248  timing               uint16, little-endian
//	250  requires CD          byte
//	251  deleted              byte
//	252  zero padding to 256
//
// String[n] is a Pascal string: one length byte followed by n data bytes,
// CP437 encoded, zero filled past the length.

var (
	cp437Encoder = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	cp437Decoder = charmap.CodePage437.NewDecoder()
)

// putPascalString encodes s into dst as a Pascal string of capacity max.
// dst must be at least max+1 bytes. Input longer than max bytes is silently
// truncated; runes outside CP437 are replaced, never rejected.
func putPascalString(dst []byte, s string, max int) {
	encoded, err := cp437Encoder.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported substitutes instead of failing; a residual
		// error means the input was hopeless, store it empty.
		encoded = nil
	}
	if len(encoded) > max {
		encoded = encoded[:max]
	}
	dst[0] = byte(len(encoded))
	copy(dst[1:1+max], encoded)
	for i := 1 + len(encoded); i <= max; i++ {
		dst[i] = 0
	}
}

// getPascalString decodes a Pascal string of capacity max from src.
// A length byte larger than max is clamped, matching how the launcher
// tolerates hand-edited files.
func getPascalString(src []byte, max int) string {
	if len(src) < 1 {
		return ""
	}
	n := int(src[0])
	if n > max {
		n = max
	}
	decoded, err := cp437Decoder.Bytes(src[1 : 1+n])
	if err != nil {
		return ""
	}
	return string(decoded)
}

// EncodeEntry packs an entry into its fixed-width on-disk form. Oversized
// text fields are truncated to their declared widths; encoding never fails.
func EncodeEntry(e Entry) []byte {
	buf := make([]byte, RecordSize)

	pos := 0
	putPascalString(buf[pos:], e.Title, TitleWidth)
	pos += TitleWidth + 1
	putPascalString(buf[pos:], e.Path, PathWidth)
	pos += PathWidth + 1
	putPascalString(buf[pos:], e.Command, CommandWidth)
	pos += CommandWidth + 1
	putPascalString(buf[pos:], e.Args, ArgsWidth)
	pos += ArgsWidth + 1

	buf[pos] = e.LegacySound
	pos++
	buf[pos] = e.FMSound
	pos++
	buf[pos] = e.MIDISound
	pos++
	buf[pos] = e.Graphics
	pos++

	putPascalString(buf[pos:], e.Publisher, PublisherWidth)
	pos += PublisherWidth + 1
	putPascalString(buf[pos:], e.Year, YearWidth)
	pos += YearWidth + 1

	buf[pos] = e.Genre
	pos++
	binary.LittleEndian.PutUint16(buf[pos:], e.Timing)
	pos += 2
	if e.RequiresCD {
		buf[pos] = 1
	}
	pos++
	if e.Deleted {
		buf[pos] = 1
	}

	return buf
}

// DecodeEntry unpacks a fixed-width record. The input must be exactly
// RecordSize bytes; anything else is a caller bug, not recoverable data.
func DecodeEntry(data []byte) (Entry, error) {
	if len(data) != RecordSize {
		return Entry{}, fmt.Errorf("catalog: record must be exactly %d bytes, got %d", RecordSize, len(data))
	}

	var e Entry
	pos := 0
	e.Title = getPascalString(data[pos:], TitleWidth)
	pos += TitleWidth + 1
	e.Path = getPascalString(data[pos:], PathWidth)
	pos += PathWidth + 1
	e.Command = getPascalString(data[pos:], CommandWidth)
	pos += CommandWidth + 1
	e.Args = getPascalString(data[pos:], ArgsWidth)
	pos += ArgsWidth + 1

	e.LegacySound = data[pos]
	pos++
	e.FMSound = data[pos]
	pos++
	e.MIDISound = data[pos]
	pos++
	e.Graphics = data[pos]
	pos++

	e.Publisher = getPascalString(data[pos:], PublisherWidth)
	pos += PublisherWidth + 1
	e.Year = getPascalString(data[pos:], YearWidth)
	pos += YearWidth + 1

	e.Genre = data[pos]
	pos++
	e.Timing = binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	e.RequiresCD = data[pos] != 0
	pos++
	e.Deleted = data[pos] != 0

	return e, nil
}

// Truncate clamps every text field of e to its declared width so that an
// entry compares equal to its encode/decode round trip. CP437 is a single
// byte encoding, so byte width equals character count.
func Truncate(e Entry) Entry {
	clamp := func(s string, max int) string {
		encoded, err := cp437Encoder.Bytes([]byte(s))
		if err != nil {
			return ""
		}
		if len(encoded) > max {
			encoded = encoded[:max]
		}
		decoded, err := cp437Decoder.Bytes(encoded)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	e.Title = clamp(e.Title, TitleWidth)
	e.Path = clamp(e.Path, PathWidth)
	e.Command = clamp(e.Command, CommandWidth)
	e.Args = clamp(e.Args, ArgsWidth)
	e.Publisher = clamp(e.Publisher, PublisherWidth)
	e.Year = clamp(e.Year, YearWidth)
	return e
}
