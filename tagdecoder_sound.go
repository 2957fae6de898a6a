// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import "fmt"

// SoundFormat is the coded format of a DefineSound tag.
type SoundFormat uint8

const (
	SoundFormatUncompressedNativeEndian SoundFormat = 0
	SoundFormatADPCM                    SoundFormat = 1
	SoundFormatMP3                      SoundFormat = 2
	SoundFormatUncompressedLittleEndian SoundFormat = 3
	SoundFormatNellymoser16kHz          SoundFormat = 4
	SoundFormatNellymoser8kHz           SoundFormat = 5
	SoundFormatNellymoser               SoundFormat = 6
	SoundFormatSpeex                    SoundFormat = 11
)

var soundFormatNames = map[SoundFormat]string{
	SoundFormatUncompressedNativeEndian: "uncompressed native-endian",
	SoundFormatADPCM:                    "ADPCM",
	SoundFormatMP3:                      "MP3",
	SoundFormatUncompressedLittleEndian: "uncompressed little-endian",
	SoundFormatNellymoser16kHz:          "Nellymoser 16 kHz",
	SoundFormatNellymoser8kHz:           "Nellymoser 8 kHz",
	SoundFormatNellymoser:               "Nellymoser",
	SoundFormatSpeex:                    "Speex",
}

func (f SoundFormat) String() string {
	if s, found := soundFormatNames[f]; found {
		return s
	}
	return fmt.Sprintf("SoundFormat(%d)", uint8(f))
}

// SoundChannels is mono or stereo.
type SoundChannels uint8

const (
	SoundMono SoundChannels = iota
	SoundStereo
)

func (c SoundChannels) String() string {
	switch c {
	case SoundMono:
		return "mono"
	case SoundStereo:
		return "stereo"
	default:
		return fmt.Sprintf("SoundChannels(%d)", uint8(c))
	}
}

var (
	soundSamplingRates = [...]float64{5512.5, 11025, 22050, 44100}
	soundBitsPerSample = [...]uint8{8, 16}
)

// DefineSound is the body of a DefineSound tag.
type DefineSound struct {
	ID     uint16
	Format SoundFormat
	// SamplingRate is in Hz.
	SamplingRate  float64
	BitsPerSample uint8
	Channels      SoundChannels
	SampleCount   uint32
	// Data is the sound data following the fixed fields.
	Data []byte
}

func decodeDefineSound(ctx TagContext) (any, int, error) {
	b := ctx.Buf
	var (
		s   DefineSound
		v   uint64
		err error
	)
	pos := ctx.Pos

	if s.ID, pos, err = b.Uint16(pos); err != nil {
		return nil, pos, err
	}

	if v, pos, err = b.Unsigned(pos, 4); err != nil {
		return nil, pos, err
	}
	s.Format = SoundFormat(v)
	if _, found := soundFormatNames[s.Format]; !found {
		return nil, pos, &UnknownEnumValueError{Field: "DefineSound.Format", Value: v}
	}

	if v, pos, err = b.Unsigned(pos, 2); err != nil {
		return nil, pos, err
	}
	s.SamplingRate = soundSamplingRates[v]

	if v, pos, err = b.Unsigned(pos, 1); err != nil {
		return nil, pos, err
	}
	s.BitsPerSample = soundBitsPerSample[v]

	if v, pos, err = b.Unsigned(pos, 1); err != nil {
		return nil, pos, err
	}
	s.Channels = SoundChannels(v)

	if s.SampleCount, pos, err = b.Uint32(pos); err != nil {
		return nil, pos, err
	}

	n := ctx.Remaining(pos)
	if n < 0 {
		return nil, pos, fmt.Errorf("%w: DefineSound fields need %d bytes, declared length is %d", ErrMalformedTag, (pos-ctx.Pos)/8, ctx.Length)
	}
	if s.Data, pos, err = b.Bytes(pos, n); err != nil {
		return nil, pos, err
	}

	return &s, pos, nil
}
