package exiftag

// locates the Exif orientation tag inside JPEG byte streams.
// walks the real APP1/TIFF/IFD structure instead of pattern matching,
// as the 2-byte tag id can occur anywhere inside compressed scan data.

import (
	"encoding/binary"
	"errors"
)

const (
	// TagOrientation is the IFD0 tag id holding display orientation.
	TagOrientation = 0x0112

	typeShort = 3

	markerAPP1 = 0xE1
	markerSOS  = 0xDA
	markerEOI  = 0xD9
)

var exifSig = []byte("Exif\x00\x00")

var (
	ErrNoExif      = errors.New("exiftag: no Exif APP1 segment")
	ErrBadTIFF     = errors.New("exiftag: malformed TIFF structure")
	ErrNoOrientTag = errors.New("exiftag: IFD0 has no orientation tag")
)

// Info describes a located orientation tag.
type Info struct {
	Orient    int              // stored value, unvalidated
	ValueOff  int              // absolute offset of the 2-byte value field
	ByteOrder binary.ByteOrder // byte order the TIFF header declared
}

// Locate walks b's JPEG marker segments, finds the Exif APP1 segment
// and returns the orientation tag from its IFD0.
// Absence at any level is reported as an error; readers which only
// care about the value should use Orient instead.
func Locate(b []byte) (Info, error) {
	if len(b) < 4 || b[0] != 0xFF || b[1] != 0xD8 {
		return Info{}, ErrNoExif
	}

	i := 2
	for i+4 <= len(b) {
		if b[i] != 0xFF {
			// desynced; not a marker where one should be
			return Info{}, ErrNoExif
		}
		marker := b[i+1]
		i += 2
		if marker == markerEOI || marker == markerSOS {
			break
		}
		if i+2 > len(b) {
			break
		}
		seglen := int(binary.BigEndian.Uint16(b[i : i+2]))
		if seglen < 2 || i+seglen > len(b) {
			break
		}
		if marker == markerAPP1 && seglen >= 2+len(exifSig) &&
			string(b[i+2:i+2+len(exifSig)]) == string(exifSig) {

			return locateInTIFF(b, i+2+len(exifSig), i+seglen)
		}
		i += seglen
	}
	return Info{}, ErrNoExif
}

// locateInTIFF scans the TIFF block b[base:end] for the IFD0
// orientation entry. Returned offsets are absolute in b.
func locateInTIFF(b []byte, base, end int) (Info, error) {
	t := b[base:end]
	if len(t) < 8 {
		return Info{}, ErrBadTIFF
	}

	var bo binary.ByteOrder
	switch {
	case t[0] == 'I' && t[1] == 'I':
		bo = binary.LittleEndian
	case t[0] == 'M' && t[1] == 'M':
		bo = binary.BigEndian
	default:
		return Info{}, ErrBadTIFF
	}
	if bo.Uint16(t[2:4]) != 42 {
		return Info{}, ErrBadTIFF
	}

	ifd0 := int(bo.Uint32(t[4:8]))
	if ifd0 < 8 || ifd0+2 > len(t) {
		return Info{}, ErrBadTIFF
	}

	count := int(bo.Uint16(t[ifd0 : ifd0+2]))
	off := ifd0 + 2
	for n := 0; n < count; n++ {
		if off+12 > len(t) {
			return Info{}, ErrBadTIFF
		}
		if bo.Uint16(t[off:off+2]) == TagOrientation {
			typ := bo.Uint16(t[off+2 : off+4])
			cnt := bo.Uint32(t[off+4 : off+8])
			if typ != typeShort || cnt == 0 {
				return Info{}, ErrBadTIFF
			}
			// SHORT count 1 lives inline in the value field
			return Info{
				Orient:    int(bo.Uint16(t[off+8 : off+10])),
				ValueOff:  base + off + 8,
				ByteOrder: bo,
			}, nil
		}
		off += 12
	}
	return Info{}, ErrNoOrientTag
}

// Orient returns b's orientation code, 1 when metadata is absent,
// unparseable or out of range. Missing metadata is the "already
// correct" state, not an error.
func Orient(b []byte) int {
	inf, err := Locate(b)
	if err != nil || inf.Orient < 1 || inf.Orient > 8 {
		return 1
	}
	return inf.Orient
}
