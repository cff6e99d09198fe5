package step

// Steps are stored as byte records of exactly the size needed to hold their
// four fields. The first byte packs four 2-bit size codes, MSB first, in the
// fixed order duration, pulse_on, pulse_off, intensity:
//
//	[dur:2][on:2][off:2][int:2]
//
// Code 0 means a 1-byte field, 1 a 2-byte field and 2 a 4-byte field. Code 3
// is reserved; it decodes to a width of zero bytes, leaving the field at
// zero. The fields follow the header back to back, little-endian, with no
// padding.

const (
	// MaxRecordLen is the worst-case record length: one header byte plus
	// four fields of four bytes each.
	MaxRecordLen = 17

	// maxDurationLen covers the header byte plus a full-width duration,
	// all that the duration fast path needs to read.
	maxDurationLen = 5
)

// codeWidth maps a 2-bit size code to a field width in bytes.
var codeWidth = [4]int{1, 2, 4, 0}

// sizeCode returns the smallest size code able to hold v.
func sizeCode(v uint32) byte {
	switch {
	case v <= 0xFF:
		return 0
	case v <= 0xFFFF:
		return 1
	default:
		return 2
	}
}

// Encode packs a Step into its minimal record form. It is the inverse of
// Decode and is used by the table compiler; the firmware itself only ever
// decodes.
func Encode(s Step) []byte {
	cd := sizeCode(s.Duration)
	con := sizeCode(s.PulseOn)
	coff := sizeCode(s.PulseOff)
	cint := sizeCode(uint32(s.Intensity))

	out := make([]byte, 0, MaxRecordLen)
	out = append(out, cd<<6|con<<4|coff<<2|cint)
	out = appendLE(out, s.Duration, codeWidth[cd])
	out = appendLE(out, s.PulseOn, codeWidth[con])
	out = appendLE(out, s.PulseOff, codeWidth[coff])
	out = appendLE(out, uint32(s.Intensity), codeWidth[cint])
	return out
}

// Decode unpacks one step record. The record is first copied into a zeroed
// worst-case scratch buffer, so a record shorter than the widths claimed by
// its header yields zero for the unset trailing fields instead of reading
// adjacent memory.
func Decode(raw []byte) Step {
	var buf [MaxRecordLen]byte
	copy(buf[:], raw)

	h := buf[0]
	wDur := codeWidth[h>>6&0b11]
	wOn := codeWidth[h>>4&0b11]
	wOff := codeWidth[h>>2&0b11]
	wInt := codeWidth[h&0b11]

	p := 1
	dur := readLE(buf[:], p, wDur)
	p += wDur
	on := readLE(buf[:], p, wOn)
	p += wOn
	off := readLE(buf[:], p, wOff)
	p += wOff
	inten := readLE(buf[:], p, wInt)

	return Step{
		Duration:  dur,
		PulseOn:   on,
		PulseOff:  off,
		Intensity: uint16(inten),
	}
}

// DecodeDuration reads only the header and the duration field of a record.
// Advancement checks need many durations per tick; reading five bytes from
// slow program storage instead of a full record keeps the scan cheap.
func DecodeDuration(raw []byte) uint32 {
	var buf [maxDurationLen]byte
	copy(buf[:], raw)

	return readLE(buf[:], 1, codeWidth[buf[0]>>6&0b11])
}

func appendLE(b []byte, v uint32, width int) []byte {
	for i := 0; i < width; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

func readLE(b []byte, off, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		v |= uint32(b[off+i]) << (8 * i)
	}
	return v
}
