// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"errors"
	"fmt"
	"strconv"
)

// UnknownPrefix is used as prefix for the names of unknown tags.
const UnknownPrefix = "UnknownTag_"

const (
	maxTagCode      = 1<<10 - 1
	longLengthShort = 0x3f
)

// TagCode is the 10 bit tag type.
type TagCode uint16

// Tag is a decoded tag.
type Tag struct {
	Code TagCode
	// Name is the registered name, or UnknownPrefix followed by the code.
	Name string
	// Offset is the byte offset of the tag header in the file.
	Offset int
	// Length is the declared body length in bytes.
	Length uint32
	// Body is the decoded body.
	// It is a []byte with exactly Length bytes for tags without a decoder,
	// otherwise whatever the decoder returned, e.g. *DefineSound.
	// It is nil for tags longer than Options.LimitTagSize.
	Body any
}

// TagContext is passed to a TagDecoder.
type TagContext struct {
	// Buf holds the file up to the end of the body, or the whole file
	// when Options.AllowTagOverrun is set. Positions are file positions.
	Buf Buffer
	// Pos is the bit position of the first body byte.
	Pos int
	// Length is the declared body length in bytes.
	Length uint32
	// Version is the SWF version from the header.
	Version uint8
}

// End returns the bit position just after the body.
func (c TagContext) End() int {
	return c.Pos + 8*int(c.Length)
}

// Remaining returns the number of body bytes left after the byte aligned position pos.
func (c TagContext) Remaining(pos int) int {
	return (c.End() - pos) / 8
}

// TagDecoder decodes the body of one tag kind.
type TagDecoder interface {
	// DecodeTag decodes the body starting at ctx.Pos and returns the body
	// and the position after the last bit it read.
	DecodeTag(ctx TagContext) (any, int, error)
}

// TagDecoderFunc is a function that implements TagDecoder.
type TagDecoderFunc func(ctx TagContext) (any, int, error)

func (f TagDecoderFunc) DecodeTag(ctx TagContext) (any, int, error) {
	return f(ctx)
}

type tagDecoder struct {
	buf      Buffer
	registry *Registry
	version  uint8

	allowOverrun bool
	limitTagSize uint32
}

// decodeFraming reads the type and length of the tag at pos and returns the
// position of the first body byte.
func (d *tagDecoder) decodeFraming(pos int) (TagCode, uint32, int, error) {
	typeAndLength, pos, err := d.buf.Uint16(pos)
	if err != nil {
		return 0, 0, pos, err
	}
	code := TagCode(typeAndLength >> 6)
	length := uint32(typeAndLength & longLengthShort)
	if length == longLengthShort {
		if length, pos, err = d.buf.Uint32(pos); err != nil {
			return 0, 0, pos, err
		}
	}
	return code, length, pos, nil
}

// decode decodes the tag at pos. The returned position is always the body
// start plus the declared length.
func (d *tagDecoder) decode(pos int, shouldHandle func(TagKind) bool) (tag Tag, handle bool, _ int, err error) {
	tag.Offset = pos / 8
	tag.Code, tag.Length, pos, err = d.decodeFraming(pos)
	if err != nil {
		return tag, false, pos, err
	}

	ctx := TagContext{Buf: d.buf, Pos: pos, Length: tag.Length, Version: d.version}
	end := ctx.End()
	if uint64(tag.Length) > uint64(len(d.buf)-pos/8) {
		return tag, false, pos, fmt.Errorf("%w: tag %d at byte %d declares %d bytes, %d left", ErrOutOfRange, tag.Code, tag.Offset, tag.Length, len(d.buf)-pos/8)
	}

	kind, found := d.registry.Lookup(tag.Code)
	if !found {
		kind = TagKind{Code: tag.Code, Name: UnknownPrefix + strconv.Itoa(int(tag.Code))}
	}
	tag.Name = kind.Name

	if shouldHandle != nil && !shouldHandle(kind) {
		return tag, false, end, nil
	}

	if d.limitTagSize > 0 && tag.Length > d.limitTagSize {
		return tag, true, end, nil
	}

	if kind.Decoder == nil {
		tag.Body, _, err = d.buf.Bytes(pos, int(tag.Length))
		if err != nil {
			return tag, false, pos, err
		}
		return tag, true, end, nil
	}

	if !d.allowOverrun {
		n := end / 8
		ctx.Buf = d.buf[:n:n]
	}

	body, next, err := kind.Decoder.DecodeTag(ctx)
	if err != nil {
		if !d.allowOverrun && errors.Is(err, ErrOutOfRange) {
			return tag, false, pos, fmt.Errorf("%w: %s at byte %d reads past its declared length %d: %v", ErrMalformedTag, tag.Name, tag.Offset, tag.Length, err)
		}
		return tag, false, pos, fmt.Errorf("%s at byte %d: %w", tag.Name, tag.Offset, err)
	}
	if next > end && !d.allowOverrun {
		return tag, false, pos, fmt.Errorf("%w: %s at byte %d read %d bits past its declared length %d", ErrMalformedTag, tag.Name, tag.Offset, next-end, tag.Length)
	}
	tag.Body = body

	return tag, true, end, nil
}
