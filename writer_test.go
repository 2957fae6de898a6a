// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import "encoding/binary"

// testWriter builds test input: bit fields MSB first, integers little-endian.
type testWriter struct {
	b []byte
	n int
}

func (w *testWriter) bits(v uint64, width uint) *testWriter {
	for i := int(width) - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.b = append(w.b, 0)
		}
		if (v>>i)&1 == 1 {
			w.b[len(w.b)-1] |= 1 << (7 - w.n%8)
		}
		w.n++
	}
	return w
}

func (w *testWriter) signed(v int64, width uint) *testWriter {
	if width == 0 {
		return w
	}
	return w.bits(uint64(v)&(1<<width-1), width)
}

func (w *testWriter) raw(b ...byte) *testWriter {
	w.b = append(w.b, b...)
	w.n = len(w.b) * 8
	return w
}

func (w *testWriter) u16(v uint16) *testWriter {
	return w.raw(binary.LittleEndian.AppendUint16(nil, v)...)
}

func (w *testWriter) u32(v uint32) *testWriter {
	return w.raw(binary.LittleEndian.AppendUint32(nil, v)...)
}

// tag writes a tag in short form when possible.
func (w *testWriter) tag(code TagCode, body ...byte) *testWriter {
	if len(body) >= longLengthShort {
		return w.longTag(code, body...)
	}
	w.u16(uint16(code)<<6 | uint16(len(body)))
	return w.raw(body...)
}

func (w *testWriter) longTag(code TagCode, body ...byte) *testWriter {
	w.u16(uint16(code)<<6 | longLengthShort)
	w.u32(uint32(len(body)))
	return w.raw(body...)
}

// minimalHeader writes an uncompressed header with a zero size stage.
func (w *testWriter) minimalHeader(version uint8) *testWriter {
	return w.raw('F', 'W', 'S', version).u32(0).bits(0, 5).u16(12 << 8).u16(1)
}

func (w *testWriter) buffer() Buffer {
	return Buffer(w.b)
}
