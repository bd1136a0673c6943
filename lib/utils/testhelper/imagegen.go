package testhelper

// synthetic image fixtures for orientation tests. the Exif segment is
// assembled by hand so tests control byte order and stored values
// exactly.

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

func appendU16(b []byte, bo binary.ByteOrder, v uint16) []byte {
	var t [2]byte
	bo.PutUint16(t[:], v)
	return append(b, t[:]...)
}

func appendU32(b []byte, bo binary.ByteOrder, v uint32) []byte {
	var t [4]byte
	bo.PutUint32(t[:], v)
	return append(b, t[:]...)
}

// ExifSegment builds a complete APP1 segment whose IFD0 holds a single
// orientation entry with the given stored value.
func ExifSegment(orientVal uint16, little bool) []byte {
	var bo binary.ByteOrder = binary.BigEndian
	bom := "MM"
	if little {
		bo = binary.LittleEndian
		bom = "II"
	}

	tiff := make([]byte, 0, 8+2+12+4)
	tiff = append(tiff, bom...)
	tiff = appendU16(tiff, bo, 42)
	tiff = appendU32(tiff, bo, 8) // IFD0 directly after header
	tiff = appendU16(tiff, bo, 1) // entry count
	tiff = appendU16(tiff, bo, 0x0112)
	tiff = appendU16(tiff, bo, 3) // SHORT
	tiff = appendU32(tiff, bo, 1)
	tiff = appendU16(tiff, bo, orientVal)
	tiff = appendU16(tiff, bo, 0) // value field pad
	tiff = appendU32(tiff, bo, 0) // no next IFD

	seg := []byte{0xFF, 0xE1}
	seg = appendU16(seg, binary.BigEndian, uint16(2+6+len(tiff)))
	seg = append(seg, "Exif\x00\x00"...)
	seg = append(seg, tiff...)
	return seg
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 0x40,
				A: 0xFF,
			})
		}
	}
	return img
}

// JPEG encodes a w×h gradient and, unless orientVal is 0, splices an
// Exif APP1 segment right after SOI.
func JPEG(w, h int, orientVal uint16, little bool) []byte {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90})
	if err != nil {
		panic(err)
	}
	b := buf.Bytes()
	if orientVal == 0 {
		return b
	}

	seg := ExifSegment(orientVal, little)
	out := make([]byte, 0, len(b)+len(seg))
	out = append(out, b[:2]...)
	out = append(out, seg...)
	out = append(out, b[2:]...)
	return out
}

// PNG encodes a w×h gradient; PNGs never carry Exif orientation.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	err := png.Encode(&buf, gradient(w, h))
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}
