// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// asSigned interprets the low width bits of v as a two's complement integer.
// A width of 0 has no sign bit and yields 0.
func asSigned[T constraints.Unsigned](v T, width uint) int64 {
	if width == 0 {
		return 0
	}
	if uint64(v)&(1<<(width-1)) != 0 {
		return int64(v) - int64(1)<<width
	}
	return int64(v)
}

// Unsigned reads a width bit unsigned field, most significant bit first.
// A width of 0 reads nothing and returns 0.
func (b Buffer) Unsigned(pos int, width uint) (uint64, int, error) {
	if width > 64 {
		return 0, pos, fmt.Errorf("%w: bit field width %d", ErrInvalidArgument, width)
	}
	var v uint64
	for j := uint(0); j < width; j++ {
		bit, next, err := b.Bit(pos)
		if err != nil {
			return 0, pos, err
		}
		v = v<<1 | uint64(bit)
		pos = next
	}
	return v, pos, nil
}

// Signed reads a width bit two's complement field.
func (b Buffer) Signed(pos int, width uint) (int64, int, error) {
	v, pos, err := b.Unsigned(pos, width)
	if err != nil {
		return 0, pos, err
	}
	return asSigned(v, width), pos, nil
}

// Fixed reads a width bit signed 16.16 fixed point field.
func (b Buffer) Fixed(pos int, width uint) (float64, int, error) {
	v, pos, err := b.Signed(pos, width)
	if err != nil {
		return 0, pos, err
	}
	return float64(v) / 65536.0, pos, nil
}

// Uint aligns pos up to the next byte boundary and reads a little-endian
// unsigned integer of byteWidth bytes.
func (b Buffer) Uint(pos int, byteWidth int) (uint64, int, error) {
	if byteWidth < 0 || byteWidth > 8 {
		return 0, pos, fmt.Errorf("%w: integer width %d bytes", ErrInvalidArgument, byteWidth)
	}
	pos, err := AlignUp(pos)
	if err != nil {
		return 0, pos, err
	}
	var v uint64
	for i := 0; i < byteWidth; i++ {
		var c uint8
		c, pos, err = b.Byte(pos)
		if err != nil {
			return 0, pos, err
		}
		v |= uint64(c) << (8 * i)
	}
	return v, pos, nil
}

func (b Buffer) Uint8(pos int) (uint8, int, error) {
	v, pos, err := b.Uint(pos, 1)
	return uint8(v), pos, err
}

func (b Buffer) Uint16(pos int) (uint16, int, error) {
	v, pos, err := b.Uint(pos, 2)
	return uint16(v), pos, err
}

func (b Buffer) Uint32(pos int) (uint32, int, error) {
	v, pos, err := b.Uint(pos, 4)
	return uint32(v), pos, err
}

func (b Buffer) Uint64(pos int) (uint64, int, error) {
	return b.Uint(pos, 8)
}

func (b Buffer) Int8(pos int) (int8, int, error) {
	v, pos, err := b.Uint8(pos)
	return int8(asSigned(v, 8)), pos, err
}

func (b Buffer) Int16(pos int) (int16, int, error) {
	v, pos, err := b.Uint16(pos)
	return int16(asSigned(v, 16)), pos, err
}

func (b Buffer) Int32(pos int) (int32, int, error) {
	v, pos, err := b.Uint32(pos)
	return int32(asSigned(v, 32)), pos, err
}

// Fixed8 reads a signed 8.8 fixed point number.
func (b Buffer) Fixed8(pos int) (float64, int, error) {
	v, pos, err := b.Int16(pos)
	if err != nil {
		return 0, pos, err
	}
	return float64(v) / 256.0, pos, nil
}

// Fixed16 reads a signed 16.16 fixed point number.
func (b Buffer) Fixed16(pos int) (float64, int, error) {
	v, pos, err := b.Int32(pos)
	if err != nil {
		return 0, pos, err
	}
	return float64(v) / 65536.0, pos, nil
}
