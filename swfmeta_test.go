// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta_test

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bep/swfmeta"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeMinimal(t *testing.T) {
	c := qt.New(t)

	var warnings []string
	res, err := swfmeta.Decode(swfmeta.Options{
		Data:  readTestDataFile(c, "minimal.swf"),
		Warnf: func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) },
	})
	c.Assert(err, qt.IsNil)

	h := res.Header
	c.Assert(h.Signature, qt.Equals, "FWS")
	c.Assert(h.Compression, qt.Equals, swfmeta.CompressionNone)
	c.Assert(h.Version, qt.Equals, uint8(6))
	c.Assert(h.FileLength, qt.Equals, uint32(0x100))
	c.Assert(*h.Frame, eq, swfmeta.FrameInfo{Rate: 12, Count: 1})

	c.Assert(res.Tags, qt.HasLen, 1)
	c.Assert(res.Tags[0], eq, swfmeta.Tag{Code: 0, Name: "End", Offset: 13, Length: 0, Body: []byte{}})

	c.Assert(warnings, qt.DeepEquals, []string{"declared file length 256 does not match data length 15"})
}

func TestDecodeSound(t *testing.T) {
	c := qt.New(t)

	res, err := swfmeta.DecodeContainer(readTestDataFile(c, "sound.swf"))
	c.Assert(err, qt.IsNil)

	h := res.Header
	c.Assert(h.Version, qt.Equals, uint8(10))
	c.Assert(h.FileLength, qt.Equals, uint32(440))
	width, height := h.Frame.Size.Pixels()
	c.Assert(width, qt.Equals, 550.0)
	c.Assert(height, qt.Equals, 400.0)
	c.Assert(h.Frame.Rate, qt.Equals, 24.0)

	c.Assert(tagNames(res.Tags), qt.DeepEquals, []string{
		"SetBackgroundColor", "FileAttributes", "Metadata", "FrameLabel",
		"DefineSound", "UnknownTag_1000", "ShowFrame", "End",
	})

	// Without the metadata decoders these bodies are opaque.
	c.Assert(res.Tags[0].Body, qt.DeepEquals, []byte{0xff, 0xff, 0xff})
	c.Assert(res.Tags[2].Offset, qt.Equals, 32)
	c.Assert(res.Tags[2].Length, qt.Equals, uint32(372))

	c.Assert(res.Tags[4].Body, eq, &swfmeta.DefineSound{
		ID:            1,
		Format:        swfmeta.SoundFormatMP3,
		SamplingRate:  44100,
		BitsPerSample: 16,
		Channels:      swfmeta.SoundStereo,
		SampleCount:   4,
		Data:          []byte{0xde, 0xad, 0xbe, 0xef},
	})

	c.Assert(res.Tags[5].Code, qt.Equals, swfmeta.TagCode(1000))
	c.Assert(res.Tags[5].Body, qt.DeepEquals, []byte{1, 2, 3})
	c.Assert(res.Tags[7].Offset, qt.Equals, 438)
}

func TestDecodeMetadataDecoders(t *testing.T) {
	c := qt.New(t)

	r, err := swfmeta.NewDefaultRegistry()
	c.Assert(err, qt.IsNil)
	c.Assert(swfmeta.RegisterMetadataDecoders(r), qt.IsNil)

	res, err := swfmeta.Decode(swfmeta.Options{Data: readTestDataFile(c, "sound.swf"), Registry: r})
	c.Assert(err, qt.IsNil)
	c.Assert(r.Frozen(), qt.IsTrue)

	c.Assert(res.Tags[0].Body.(swfmeta.RGB).String(), qt.Equals, "#ffffff")
	c.Assert(res.Tags[1].Body, qt.Equals, swfmeta.FileAttributes{HasMetadata: true, ActionScript3: true})
	tool, _ := res.Tags[2].Body.(*swfmeta.Metadata).Get("CreatorTool")
	c.Assert(tool, qt.Equals, "swfmeta gen")
	c.Assert(res.Tags[3].Body, qt.Equals, swfmeta.FrameLabel{Name: "intro"})
}

func TestDecodeCompressed(t *testing.T) {
	c := qt.New(t)

	var warnings []string
	res, err := swfmeta.Decode(swfmeta.Options{
		Data:  readTestDataFile(c, "compressed.swf"),
		Warnf: func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) },
		HandleTag: func(tag swfmeta.Tag) error {
			return errors.New("no tags expected")
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Header.Signature, qt.Equals, "CWS")
	c.Assert(res.Header.Compression.String(), qt.Equals, "zlib")
	c.Assert(res.Header.FileLength, qt.Equals, uint32(440))
	c.Assert(res.Header.Frame, qt.IsNil)
	c.Assert(res.Tags, qt.IsNil)
	c.Assert(warnings, qt.Contains, "body is zlib compressed; tags not decoded")

	// LZMA: nothing after the fixed fields is read.
	res, err = swfmeta.DecodeContainer([]byte{'Z', 'W', 'S', 13, 8, 0, 0, 0})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Header.Compression, qt.Equals, swfmeta.CompressionLZMA)
	c.Assert(res.Tags, qt.IsNil)
}

func TestDecodeCorrupt(t *testing.T) {
	c := qt.New(t)

	expect := map[string]error{
		"bad_signature.swf":    swfmeta.ErrInvalidFormat,
		"truncated_tag.swf":    swfmeta.ErrOutOfRange,
		"bad_sound_format.swf": swfmeta.ErrUnknownEnumValue,
		"short_sound.swf":      swfmeta.ErrMalformedTag,
	}

	files, err := filepath.Glob(filepath.Join("testdata", "corrupt", "*.swf"))
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.HasLen, len(expect))

	for _, file := range files {
		data, err := os.ReadFile(file)
		c.Assert(err, qt.IsNil)
		res, err := swfmeta.DecodeContainer(data)
		c.Assert(err, qt.ErrorIs, expect[filepath.Base(file)], qt.Commentf("file: %s", file))
		c.Assert(res, eq, swfmeta.Container{})
	}
}

func TestDecodeErrors(t *testing.T) {
	c := qt.New(t)

	_, err := swfmeta.Decode(swfmeta.Options{})
	c.Assert(err, qt.ErrorMatches, "no data provided")

	_, err = swfmeta.DecodeContainer([]byte{})
	c.Assert(err, qt.ErrorIs, swfmeta.ErrOutOfRange)
}

func TestDecodeHandleTag(t *testing.T) {
	c := qt.New(t)
	data := readTestDataFile(c, "sound.swf")

	c.Run("Stop walking", func(c *qt.C) {
		var names []string
		res, err := swfmeta.Decode(swfmeta.Options{
			Data: data,
			HandleTag: func(tag swfmeta.Tag) error {
				names = append(names, tag.Name)
				if tag.Code == swfmeta.TagMetadata {
					return swfmeta.ErrStopWalking
				}
				return nil
			},
		})
		c.Assert(err, qt.IsNil)
		c.Assert(names, qt.DeepEquals, []string{"SetBackgroundColor", "FileAttributes", "Metadata"})
		c.Assert(res.Tags, qt.HasLen, 3)
	})

	c.Run("Error", func(c *qt.C) {
		errBoom := errors.New("boom")
		_, err := swfmeta.Decode(swfmeta.Options{
			Data:      data,
			HandleTag: func(tag swfmeta.Tag) error { return errBoom },
		})
		c.Assert(err, qt.ErrorIs, errBoom)
	})

	c.Run("ShouldHandleTag", func(c *qt.C) {
		res, err := swfmeta.Decode(swfmeta.Options{
			Data: data,
			ShouldHandleTag: func(kind swfmeta.TagKind) bool {
				return kind.Code == swfmeta.TagDefineSound
			},
		})
		c.Assert(err, qt.IsNil)
		c.Assert(tagNames(res.Tags), qt.DeepEquals, []string{"DefineSound"})
	})

	c.Run("LimitTagSize", func(c *qt.C) {
		res, err := swfmeta.Decode(swfmeta.Options{Data: data, LimitTagSize: 100})
		c.Assert(err, qt.IsNil)
		c.Assert(res.Tags, qt.HasLen, 8)
		c.Assert(res.Tags[2].Name, qt.Equals, "Metadata")
		c.Assert(res.Tags[2].Body, qt.IsNil)
		c.Assert(res.Tags[4].Body, qt.Not(qt.IsNil))
	})

	c.Run("LimitNumTags", func(c *qt.C) {
		var warnings []string
		res, err := swfmeta.Decode(swfmeta.Options{
			Data:         data,
			LimitNumTags: 2,
			Warnf:        func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) },
		})
		c.Assert(err, qt.IsNil)
		c.Assert(res.Tags, qt.HasLen, 2)
		c.Assert(warnings, qt.Contains, "stopped after 2 tags")
	})
}

func TestDecodeCustomDecoder(t *testing.T) {
	c := qt.New(t)

	r := swfmeta.DefaultRegistry().Clone()
	c.Assert(r.Register(1000, "Custom", swfmeta.TagDecoderFunc(func(ctx swfmeta.TagContext) (any, int, error) {
		return ctx.Buf.Uint16(ctx.Pos)
	})), qt.IsNil)

	res, err := swfmeta.Decode(swfmeta.Options{Data: readTestDataFile(c, "sound.swf"), Registry: r})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Tags[5].Name, qt.Equals, "Custom")
	c.Assert(res.Tags[5].Body, qt.Equals, uint16(0x0201))
	c.Assert(res.Tags[6].Name, qt.Equals, "ShowFrame")
}

func TestDecodePanickingDecoder(t *testing.T) {
	c := qt.New(t)

	errBoom := errors.New("boom")
	r := swfmeta.DefaultRegistry().Clone()
	c.Assert(r.Register(1000, "Panics", swfmeta.TagDecoderFunc(func(ctx swfmeta.TagContext) (any, int, error) {
		panic(errBoom)
	})), qt.IsNil)

	_, err := swfmeta.Decode(swfmeta.Options{Data: readTestDataFile(c, "sound.swf"), Registry: r})
	c.Assert(err, qt.ErrorIs, errBoom)
}

func TestDecodeConcurrent(t *testing.T) {
	c := qt.New(t)
	data := readTestDataFile(c, "sound.swf")

	var wg sync.WaitGroup
	for j := 0; j < 8; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 20; k++ {
				res, err := swfmeta.DecodeContainer(data)
				if err != nil || len(res.Tags) != 8 {
					t.Errorf("unexpected result: %d tags, %v", len(res.Tags), err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func tagNames(tags []swfmeta.Tag) []string {
	var names []string
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func readTestDataFile(t testing.TB, filename string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

var eq = qt.CmpEquals(
	cmp.Comparer(func(x, y float64) bool {
		delta := math.Abs(x - y)
		return delta < 0.00001
	}),
)

func BenchmarkDecode(b *testing.B) {
	data := readTestDataFile(b, "sound.swf")

	runBenchmark := func(b *testing.B, name string, opts swfmeta.Options) {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := swfmeta.Decode(opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}

	runBenchmark(b, "default", swfmeta.Options{Data: data})

	r, err := swfmeta.NewDefaultRegistry()
	if err != nil {
		b.Fatal(err)
	}
	if err := swfmeta.RegisterMetadataDecoders(r); err != nil {
		b.Fatal(err)
	}
	runBenchmark(b, "metadata", swfmeta.Options{Data: data, Registry: r})

	runBenchmark(b, "header", swfmeta.Options{
		Data:            data,
		ShouldHandleTag: func(swfmeta.TagKind) bool { return false },
	})
}
