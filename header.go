// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import "fmt"

const (
	// CompressionNone is used for FWS files.
	CompressionNone Compression = iota
	// CompressionZlib is used for CWS files.
	CompressionZlib
	// CompressionLZMA is used for ZWS files.
	CompressionLZMA
)

// Compression is the compression kind declared by the first signature byte.
type Compression uint8

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionLZMA:
		return "lzma"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Header is the fixed header of a SWF file.
type Header struct {
	// Signature is the three byte signature, e.g. "FWS".
	Signature   string
	Compression Compression
	Version     uint8
	// FileLength is the declared total length. It is not validated.
	FileLength uint32

	// Frame is only set for uncompressed files.
	// Everything after FileLength is part of the compressed body otherwise.
	Frame *FrameInfo
}

// FrameInfo holds the stage geometry and the playback rate.
type FrameInfo struct {
	// Size is the stage rectangle in twips.
	Size Rect
	// Rate is the frame rate in frames per second.
	Rate  float64
	Count uint16
}

// Rect is a rectangle in twips (1/20 of a pixel).
// Min is not guaranteed to be <= Max.
type Rect struct {
	XMin int32
	XMax int32
	YMin int32
	YMax int32
}

// Pixels returns the width and height of r in pixels.
func (r Rect) Pixels() (width, height float64) {
	return float64(r.XMax-r.XMin) / 20, float64(r.YMax-r.YMin) / 20
}

// Rect reads a rectangle record: a 5 bit width followed by four signed
// fields of that width.
func (b Buffer) Rect(pos int) (Rect, int, error) {
	var r Rect
	width, pos, err := b.Unsigned(pos, 5)
	if err != nil {
		return r, pos, err
	}
	for _, v := range []*int32{&r.XMin, &r.XMax, &r.YMin, &r.YMax} {
		var n int64
		n, pos, err = b.Signed(pos, uint(width))
		if err != nil {
			return Rect{}, pos, err
		}
		*v = int32(n)
	}
	return r, pos, nil
}

// DecodeHeader decodes the header at the start of data and returns it
// together with the number of bytes consumed.
//
// For compressed files only the signature, version and file length are
// decoded.
func DecodeHeader(data []byte) (Header, int, error) {
	h, pos, err := decodeHeader(Buffer(data), 0)
	if err != nil {
		return Header{}, 0, err
	}
	return h, pos / 8, nil
}

func decodeHeader(b Buffer, pos int) (h Header, _ int, err error) {
	var sig [3]byte
	for i := range sig {
		sig[i], pos, err = b.Uint8(pos)
		if err != nil {
			return h, pos, err
		}
	}
	h.Signature = string(sig[:])

	if sig[1] != 'W' || sig[2] != 'S' {
		return h, pos, newInvalidFormatErrorf("header signature is invalid; expected %q, got %q", "WS", sig[1:])
	}
	switch sig[0] {
	case 'F':
		h.Compression = CompressionNone
	case 'C':
		h.Compression = CompressionZlib
	case 'Z':
		h.Compression = CompressionLZMA
	default:
		return h, pos, newInvalidFormatErrorf("unknown compression type specified in header: %q", sig[0])
	}

	if h.Version, pos, err = b.Uint8(pos); err != nil {
		return h, pos, err
	}
	if h.FileLength, pos, err = b.Uint32(pos); err != nil {
		return h, pos, err
	}

	if h.Compression != CompressionNone {
		return h, pos, nil
	}

	var f FrameInfo
	if f.Size, pos, err = b.Rect(pos); err != nil {
		return h, pos, err
	}
	if f.Rate, pos, err = b.Fixed8(pos); err != nil {
		return h, pos, err
	}
	if f.Count, pos, err = b.Uint16(pos); err != nil {
		return h, pos, err
	}
	h.Frame = &f

	return h, pos, nil
}
