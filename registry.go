// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TagKind describes a registered tag type.
type TagKind struct {
	Code TagCode
	Name string
	// Decoder decodes the tag body.
	// If nil, the body is kept as opaque bytes.
	Decoder TagDecoder
}

// Registry maps tag codes to tag kinds.
//
// A Registry is populated before decoding starts and is read-only once
// frozen. Decode freezes the Registry it is given.
// A frozen Registry is safe for concurrent use. Register and SetDecoder
// must not be called while the Registry is being passed to Decode.
type Registry struct {
	kinds  map[TagCode]TagKind
	frozen atomic.Bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[TagCode]TagKind)}
}

// NewDefaultRegistry creates a Registry with all the known SWF tag types.
// DefineSound has a decoder; all other bodies are kept as opaque bytes.
// The returned Registry is not frozen, so more tags may be registered.
func NewDefaultRegistry() (*Registry, error) {
	return newRegistryWith(knownTags)
}

func newRegistryWith(kinds []TagKind) (*Registry, error) {
	r := NewRegistry()
	for _, k := range kinds {
		if err := r.Register(k.Code, k.Name, k.Decoder); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// mustNewFrozenRegistry panics on invalid kinds.
func mustNewFrozenRegistry(kinds []TagKind) *Registry {
	r, err := newRegistryWith(kinds)
	if err != nil {
		panic(err)
	}
	return r.Freeze()
}

// Built at package initialization, so an invalid table fails fast.
var defaultRegistry = mustNewFrozenRegistry(knownTags)

// DefaultRegistry returns the shared, frozen Registry used when
// Options.Registry is not set.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register registers the tag type code.
// Registering the same code twice is an error.
// Register is not safe for concurrent use.
func (r *Registry) Register(code TagCode, name string, dec TagDecoder) error {
	if r.frozen.Load() {
		return fmt.Errorf("%w: register %s (%d)", ErrRegistryFrozen, name, code)
	}
	if code > maxTagCode {
		return fmt.Errorf("%w: tag code %d does not fit in 10 bits", ErrInvalidArgument, code)
	}
	if existing, found := r.kinds[code]; found {
		return fmt.Errorf("%w: %d is already registered as %s", ErrDuplicateTag, code, existing.Name)
	}
	if r.kinds == nil {
		r.kinds = make(map[TagCode]TagKind)
	}
	r.kinds[code] = TagKind{Code: code, Name: name, Decoder: dec}
	return nil
}

// SetDecoder sets the body decoder of the already registered tag type code.
func (r *Registry) SetDecoder(code TagCode, dec TagDecoder) error {
	if r.frozen.Load() {
		return fmt.Errorf("%w: set decoder for %d", ErrRegistryFrozen, code)
	}
	k, found := r.kinds[code]
	if !found {
		return fmt.Errorf("%w: tag code %d is not registered", ErrInvalidArgument, code)
	}
	k.Decoder = dec
	r.kinds[code] = k
	return nil
}

// Freeze makes r read-only and returns it.
func (r *Registry) Freeze() *Registry {
	r.frozen.Store(true)
	return r
}

// Frozen reports whether r is read-only.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Clone returns an unfrozen copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{kinds: maps.Clone(r.kinds)}
}

// Lookup returns the kind registered for code.
func (r *Registry) Lookup(code TagCode) (TagKind, bool) {
	k, found := r.kinds[code]
	return k, found
}

// Kinds returns all registered kinds sorted by code.
func (r *Registry) Kinds() []TagKind {
	kinds := maps.Values(r.kinds)
	slices.SortFunc(kinds, func(a, b TagKind) int {
		return int(a.Code) - int(b.Code)
	})
	return kinds
}

const (
	TagEnd                          TagCode = 0
	TagShowFrame                    TagCode = 1
	TagDefineShape                  TagCode = 2
	TagPlaceObject                  TagCode = 4
	TagRemoveObject                 TagCode = 5
	TagDefineBits                   TagCode = 6
	TagDefineButton                 TagCode = 7
	TagJPEGTables                   TagCode = 8
	TagSetBackgroundColor           TagCode = 9
	TagDefineFont                   TagCode = 10
	TagDefineText                   TagCode = 11
	TagDoAction                     TagCode = 12
	TagDefineFontInfo               TagCode = 13
	TagDefineSound                  TagCode = 14
	TagStartSound                   TagCode = 15
	TagDefineButtonSound            TagCode = 17
	TagSoundStreamHead              TagCode = 18
	TagSoundStreamBlock             TagCode = 19
	TagDefineBitsLossless           TagCode = 20
	TagDefineBitsJPEG2              TagCode = 21
	TagDefineShape2                 TagCode = 22
	TagDefineButtonCxform           TagCode = 23
	TagProtect                      TagCode = 24
	TagPlaceObject2                 TagCode = 26
	TagRemoveObject2                TagCode = 28
	TagDefineShape3                 TagCode = 32
	TagDefineText2                  TagCode = 33
	TagDefineButton2                TagCode = 34
	TagDefineBitsJPEG3              TagCode = 35
	TagDefineBitsLossless2          TagCode = 36
	TagDefineEditText               TagCode = 37
	TagDefineSprite                 TagCode = 39
	TagFrameLabel                   TagCode = 43
	TagSoundStreamHead2             TagCode = 45
	TagDefineMorphShape             TagCode = 46
	TagDefineFont2                  TagCode = 48
	TagExportAssets                 TagCode = 56
	TagImportAssets                 TagCode = 57
	TagEnableDebugger               TagCode = 58
	TagDoInitAction                 TagCode = 59
	TagDefineVideoStream            TagCode = 60
	TagVideoFrame                   TagCode = 61
	TagDefineFontInfo2              TagCode = 62
	TagEnableDebugger2              TagCode = 64
	TagScriptLimits                 TagCode = 65
	TagSetTabIndex                  TagCode = 66
	TagFileAttributes               TagCode = 69
	TagPlaceObject3                 TagCode = 70
	TagImportAssets2                TagCode = 71
	TagDefineFontAlignZones         TagCode = 73
	TagCSMTextSettings              TagCode = 74
	TagDefineFont3                  TagCode = 75
	TagSymbolClass                  TagCode = 76
	TagMetadata                     TagCode = 77
	TagDefineScalingGrid            TagCode = 78
	TagDoABC                        TagCode = 82
	TagDefineShape4                 TagCode = 83
	TagDefineMorphShape2            TagCode = 84
	TagDefineSceneAndFrameLabelData TagCode = 86
	TagDefineBinaryData             TagCode = 87
	TagDefineFontName               TagCode = 88
	TagStartSound2                  TagCode = 89
	TagDefineBitsJPEG4              TagCode = 90
	TagDefineFont4                  TagCode = 91
	TagEnableTelemetry              TagCode = 93
)

// Source: SWF File Format Specification, version 19.
var knownTags = []TagKind{
	{Code: TagEnd, Name: "End"},
	{Code: TagShowFrame, Name: "ShowFrame"},
	{Code: TagDefineShape, Name: "DefineShape"},
	{Code: TagPlaceObject, Name: "PlaceObject"},
	{Code: TagRemoveObject, Name: "RemoveObject"},
	{Code: TagDefineBits, Name: "DefineBits"},
	{Code: TagDefineButton, Name: "DefineButton"},
	{Code: TagJPEGTables, Name: "JPEGTables"},
	{Code: TagSetBackgroundColor, Name: "SetBackgroundColor"},
	{Code: TagDefineFont, Name: "DefineFont"},
	{Code: TagDefineText, Name: "DefineText"},
	{Code: TagDoAction, Name: "DoAction"},
	{Code: TagDefineFontInfo, Name: "DefineFontInfo"},
	{Code: TagDefineSound, Name: "DefineSound", Decoder: TagDecoderFunc(decodeDefineSound)},
	{Code: TagStartSound, Name: "StartSound"},
	{Code: TagDefineButtonSound, Name: "DefineButtonSound"},
	{Code: TagSoundStreamHead, Name: "SoundStreamHead"},
	{Code: TagSoundStreamBlock, Name: "SoundStreamBlock"},
	{Code: TagDefineBitsLossless, Name: "DefineBitsLossless"},
	{Code: TagDefineBitsJPEG2, Name: "DefineBitsJPEG2"},
	{Code: TagDefineShape2, Name: "DefineShape2"},
	{Code: TagDefineButtonCxform, Name: "DefineButtonCxform"},
	{Code: TagProtect, Name: "Protect"},
	{Code: TagPlaceObject2, Name: "PlaceObject2"},
	{Code: TagRemoveObject2, Name: "RemoveObject2"},
	{Code: TagDefineShape3, Name: "DefineShape3"},
	{Code: TagDefineText2, Name: "DefineText2"},
	{Code: TagDefineButton2, Name: "DefineButton2"},
	{Code: TagDefineBitsJPEG3, Name: "DefineBitsJPEG3"},
	{Code: TagDefineBitsLossless2, Name: "DefineBitsLossless2"},
	{Code: TagDefineEditText, Name: "DefineEditText"},
	{Code: TagDefineSprite, Name: "DefineSprite"},
	{Code: TagFrameLabel, Name: "FrameLabel"},
	{Code: TagSoundStreamHead2, Name: "SoundStreamHead2"},
	{Code: TagDefineMorphShape, Name: "DefineMorphShape"},
	{Code: TagDefineFont2, Name: "DefineFont2"},
	{Code: TagExportAssets, Name: "ExportAssets"},
	{Code: TagImportAssets, Name: "ImportAssets"},
	{Code: TagEnableDebugger, Name: "EnableDebugger"},
	{Code: TagDoInitAction, Name: "DoInitAction"},
	{Code: TagDefineVideoStream, Name: "DefineVideoStream"},
	{Code: TagVideoFrame, Name: "VideoFrame"},
	{Code: TagDefineFontInfo2, Name: "DefineFontInfo2"},
	{Code: TagEnableDebugger2, Name: "EnableDebugger2"},
	{Code: TagScriptLimits, Name: "ScriptLimits"},
	{Code: TagSetTabIndex, Name: "SetTabIndex"},
	{Code: TagFileAttributes, Name: "FileAttributes"},
	{Code: TagPlaceObject3, Name: "PlaceObject3"},
	{Code: TagImportAssets2, Name: "ImportAssets2"},
	{Code: TagDefineFontAlignZones, Name: "DefineFontAlignZones"},
	{Code: TagCSMTextSettings, Name: "CSMTextSettings"},
	{Code: TagDefineFont3, Name: "DefineFont3"},
	{Code: TagSymbolClass, Name: "SymbolClass"},
	{Code: TagMetadata, Name: "Metadata"},
	{Code: TagDefineScalingGrid, Name: "DefineScalingGrid"},
	{Code: TagDoABC, Name: "DoABC"},
	{Code: TagDefineShape4, Name: "DefineShape4"},
	{Code: TagDefineMorphShape2, Name: "DefineMorphShape2"},
	{Code: TagDefineSceneAndFrameLabelData, Name: "DefineSceneAndFrameLabelData"},
	{Code: TagDefineBinaryData, Name: "DefineBinaryData"},
	{Code: TagDefineFontName, Name: "DefineFontName"},
	{Code: TagStartSound2, Name: "StartSound2"},
	{Code: TagDefineBitsJPEG4, Name: "DefineBitsJPEG4"},
	{Code: TagDefineFont4, Name: "DefineFont4"},
	{Code: TagEnableTelemetry, Name: "EnableTelemetry"},
}
