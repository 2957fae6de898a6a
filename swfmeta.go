// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package swfmeta decodes the header and tag stream of SWF files.
package swfmeta

import (
	"errors"
	"fmt"
)

// Internal error to signal that we should stop any further processing.
var errStop = errors.New("stop")

// Container is a decoded SWF file.
type Container struct {
	Header Header
	// Tags in file order.
	// Always nil for compressed files, as the body is not decoded.
	Tags []Tag
}

// Options contains the options for the Decode function.
type Options struct {
	// The complete file contents.
	Data []byte

	// The tag types to decode with.
	// If not set, DefaultRegistry is used.
	// The Registry is frozen by Decode.
	Registry *Registry

	// If set, the decoder skips tags for which this function returns false.
	// Skipped tags are neither decoded, collected nor passed to HandleTag.
	ShouldHandleTag func(kind TagKind) bool

	// If set, this function is called for each decoded tag, in file order.
	// Return ErrStopWalking to stop decoding without an error.
	HandleTag func(tag Tag) error

	// Warnf will be called for each warning.
	Warnf func(string, ...any)

	// LimitNumTags is the maximum number of tags to read.
	// Default value is 1000000.
	LimitNumTags uint32

	// LimitTagSize is the maximum declared length in bytes of a tag body to decode.
	// Larger tags are still reported, but with a nil Body.
	// Default is no limit.
	LimitTagSize uint32

	// AllowTagOverrun disables the check that a tag body decoder stays within
	// the declared tag length. The next tag is always read from the position
	// given by the declared length.
	AllowTagOverrun bool
}

// DecodeContainer decodes data using the default options.
func DecodeContainer(data []byte) (Container, error) {
	return Decode(Options{Data: data})
}

// Decode decodes the SWF file in opts.Data.
func Decode(opts Options) (result Container, err error) {
	errFinal := func(err2 error) error {
		if err2 == nil || err2 == errStop || errors.Is(err2, ErrStopWalking) {
			return nil
		}
		return err2
	}

	defer func() {
		err = errFinal(err)
		if err != nil {
			result = Container{}
		}
	}()

	errFromRecover := func(r any) (err2 error) {
		if r == nil {
			return nil
		}
		if errp, ok := r.(error); ok {
			err2 = errp
		} else {
			err2 = fmt.Errorf("unknown panic: %v", r)
		}
		return
	}

	defer func() {
		err2 := errFromRecover(recover())
		if err == nil {
			err = err2
		}
	}()

	if opts.Data == nil {
		return result, fmt.Errorf("no data provided")
	}

	const defaultLimitNumTags = 1000000

	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	opts.Registry.Freeze()
	if opts.LimitNumTags == 0 {
		opts.LimitNumTags = defaultLimitNumTags
	}
	if opts.HandleTag == nil {
		opts.HandleTag = func(Tag) error { return nil }
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	buf := Buffer(opts.Data)

	header, pos, err := decodeHeader(buf, 0)
	if err != nil {
		return result, err
	}
	result.Header = header

	if header.FileLength != uint32(len(buf)) {
		opts.Warnf("declared file length %d does not match data length %d", header.FileLength, len(buf))
	}

	if header.Compression != CompressionNone {
		opts.Warnf("body is %s compressed; tags not decoded", header.Compression)
		return result, nil
	}

	dec := &tagDecoder{
		buf:          buf,
		registry:     opts.Registry,
		version:      header.Version,
		allowOverrun: opts.AllowTagOverrun,
		limitTagSize: opts.LimitTagSize,
	}

	var tagCount uint32
	for pos/8 < len(buf) {
		tagCount++
		if tagCount > opts.LimitNumTags {
			opts.Warnf("stopped after %d tags", opts.LimitNumTags)
			return result, errStop
		}

		var (
			tag    Tag
			handle bool
		)
		tag, handle, pos, err = dec.decode(pos, opts.ShouldHandleTag)
		if err != nil {
			return result, err
		}
		if !handle {
			continue
		}

		result.Tags = append(result.Tags, tag)
		if err := opts.HandleTag(tag); err != nil {
			return result, err
		}
	}

	return result, nil
}
