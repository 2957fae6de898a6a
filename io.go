// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import "fmt"

// Buffer is a read-only view of a byte slice addressed by bit position.
//
// None of the methods hold any state: each read takes the current bit
// position and returns the value read together with the new position.
// Bit fields are read most significant bit first.
type Buffer []byte

// BitLen returns the length of b in bits.
func (b Buffer) BitLen() int {
	return len(b) * 8
}

// AlignUp returns the smallest multiple of 8 that is >= pos.
func AlignUp(pos int) (int, error) {
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative bit position %d", ErrInvalidArgument, pos)
	}
	return (pos + 7) &^ 7, nil
}

// Bit reads the bit at pos.
func (b Buffer) Bit(pos int) (uint8, int, error) {
	if pos < 0 {
		return 0, pos, fmt.Errorf("%w: negative bit position %d", ErrInvalidArgument, pos)
	}
	i := pos >> 3
	if i >= len(b) {
		return 0, pos, fmt.Errorf("%w: bit %d of %d", ErrOutOfRange, pos, b.BitLen())
	}
	return (b[i] >> (7 - uint(pos&7))) & 1, pos + 1, nil
}

// Byte reads the byte at pos, which must be byte aligned.
func (b Buffer) Byte(pos int) (uint8, int, error) {
	if err := b.checkAligned(pos); err != nil {
		return 0, pos, err
	}
	i := pos >> 3
	if i >= len(b) {
		return 0, pos, fmt.Errorf("%w: byte %d of %d", ErrOutOfRange, i, len(b))
	}
	return b[i], pos + 8, nil
}

// Bytes returns the n bytes starting at pos, which must be byte aligned.
// The returned slice shares memory with b and has its capacity capped to n.
func (b Buffer) Bytes(pos, n int) ([]byte, int, error) {
	if n < 0 {
		return nil, pos, fmt.Errorf("%w: negative byte count %d", ErrInvalidArgument, n)
	}
	if err := b.checkAligned(pos); err != nil {
		return nil, pos, err
	}
	i := pos >> 3
	if i > len(b) || n > len(b)-i {
		return nil, pos, fmt.Errorf("%w: %d bytes at byte %d of %d", ErrOutOfRange, n, i, len(b))
	}
	return b[i : i+n : i+n], pos + 8*n, nil
}

func (b Buffer) checkAligned(pos int) error {
	if pos < 0 {
		return fmt.Errorf("%w: negative bit position %d", ErrInvalidArgument, pos)
	}
	if pos&7 != 0 {
		return fmt.Errorf("%w: bit position %d", ErrMisalignedAccess, pos)
	}
	return nil
}
