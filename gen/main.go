// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

//go:generate go run main.go
package main

import (
	"bytes"
	"encoding/binary"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

// bitWriter writes bit fields MSB first and byte aligned little-endian integers.
type bitWriter struct {
	b []byte
	n int
}

func (w *bitWriter) bits(v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.b = append(w.b, 0)
		}
		if (v>>i)&1 == 1 {
			w.b[len(w.b)-1] |= 1 << (7 - w.n%8)
		}
		w.n++
	}
}

func (w *bitWriter) raw(b []byte) {
	w.b = append(w.b, b...)
	w.n = len(w.b) * 8
}

func (w *bitWriter) u8(v uint8) { w.raw([]byte{v}) }

func (w *bitWriter) u16(v uint16) { w.raw(binary.LittleEndian.AppendUint16(nil, v)) }

func (w *bitWriter) u32(v uint32) { w.raw(binary.LittleEndian.AppendUint32(nil, v)) }

func (w *bitWriter) rect(width int, vals ...int64) {
	w.bits(uint64(width), 5)
	for _, v := range vals {
		w.bits(uint64(v)&(1<<width-1), width)
	}
}

func (w *bitWriter) header(sig string, version uint8, width int, rect []int64, rate, count uint16) {
	w.raw([]byte(sig))
	w.u8(version)
	w.u32(0)
	w.rect(width, rect...)
	w.u16(rate)
	w.u16(count)
}

func (w *bitWriter) tag(code uint16, body []byte) {
	if len(body) >= 0x3f {
		w.u16(code<<6 | 0x3f)
		w.u32(uint32(len(body)))
	} else {
		w.u16(code<<6 | uint16(len(body)))
	}
	w.raw(body)
}

// finish sets the declared file length.
func (w *bitWriter) finish() []byte {
	binary.LittleEndian.PutUint32(w.b[4:8], uint32(len(w.b)))
	return w.b
}

func soundBody(flags uint8, sampleCount []byte, data []byte) []byte {
	b := binary.LittleEndian.AppendUint16(nil, 1)
	b = append(b, flags)
	b = append(b, sampleCount...)
	return append(b, data...)
}

const xmp = `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
	`<rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:CreatorTool="swfmeta gen">` +
	`<dc:title><rdf:Alt><rdf:li xml:lang="x-default">Sunrise</rdf:li></rdf:Alt></dc:title>` +
	`</rdf:Description></rdf:RDF></x:xmpmeta>`

func main() {
	outDir := filepath.Join("..", "testdata")
	files := map[string][]byte{}

	// The declared length is deliberately wrong.
	w := &bitWriter{}
	w.raw([]byte("FWS"))
	w.u8(6)
	w.u32(0x100)
	w.rect(0, 0, 0, 0, 0)
	w.u16(12 << 8)
	w.u16(1)
	w.tag(0, nil)
	files["minimal.swf"] = w.b

	w = &bitWriter{}
	w.header("FWS", 10, 15, []int64{0, 11000, 0, 8000}, 24<<8, 1)
	w.tag(9, []byte{0xff, 0xff, 0xff})
	w.tag(69, []byte{0x18, 0, 0, 0})
	w.tag(77, append([]byte(xmp), 0))
	w.tag(43, []byte("intro\x00"))
	w.tag(14, soundBody(0x2f, []byte{4, 0, 0, 0}, []byte{0xde, 0xad, 0xbe, 0xef}))
	w.tag(1000, []byte{1, 2, 3})
	w.tag(1, nil)
	w.tag(0, nil)
	sound := w.finish()
	files["sound.swf"] = sound

	var compressed bytes.Buffer
	compressed.WriteString("CWS")
	compressed.Write(sound[3:8])
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(sound[8:]); err != nil {
		log.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		log.Fatal(err)
	}
	files["compressed.swf"] = compressed.Bytes()

	w = &bitWriter{}
	w.raw([]byte("FWX"))
	w.u8(6)
	w.u32(16)
	w.rect(0, 0, 0, 0, 0)
	w.u16(12 << 8)
	w.u16(1)
	w.tag(0, nil)
	files["corrupt/bad_signature.swf"] = w.b

	// Declares 10 bytes, has 2.
	w = &bitWriter{}
	w.header("FWS", 6, 0, []int64{0, 0, 0, 0}, 12<<8, 1)
	w.u16(2<<6 | 10)
	w.raw([]byte{1, 2})
	files["corrupt/truncated_tag.swf"] = w.finish()

	// Sound format 9.
	w = &bitWriter{}
	w.header("FWS", 6, 0, []int64{0, 0, 0, 0}, 12<<8, 1)
	w.tag(14, soundBody(0x9f, []byte{4, 0, 0, 0}, nil))
	w.tag(0, nil)
	files["corrupt/bad_sound_format.swf"] = w.finish()

	// The sample count runs into the next tag.
	w = &bitWriter{}
	w.header("FWS", 6, 0, []int64{0, 0, 0, 0}, 12<<8, 1)
	w.tag(14, soundBody(0x2f, []byte{4, 0}, nil))
	w.tag(1, nil)
	w.tag(0, nil)
	files["corrupt/short_sound.swf"] = w.finish()

	for name, b := range files {
		filename := filepath.Join(outDir, name)
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(filename, b, 0o644); err != nil {
			log.Fatal(err)
		}
	}
}
