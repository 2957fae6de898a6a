// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// RegisterMetadataDecoders sets decoders for the tags describing the file
// rather than its content: SetBackgroundColor, FrameLabel, ScriptLimits,
// FileAttributes and Metadata.
// The tag codes must already be registered, e.g. by NewDefaultRegistry.
func RegisterMetadataDecoders(r *Registry) error {
	for code, dec := range map[TagCode]TagDecoderFunc{
		TagSetBackgroundColor: decodeSetBackgroundColor,
		TagFrameLabel:         decodeFrameLabel,
		TagScriptLimits:       decodeScriptLimits,
		TagFileAttributes:     decodeFileAttributes,
		TagMetadata:           decodeMetadata,
	} {
		if err := r.SetDecoder(code, dec); err != nil {
			return err
		}
	}
	return nil
}

// RGB is the body of a SetBackgroundColor tag.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func decodeSetBackgroundColor(ctx TagContext) (any, int, error) {
	b, pos, err := ctx.Buf.Bytes(ctx.Pos, 3)
	if err != nil {
		return nil, pos, err
	}
	return RGB{R: b[0], G: b[1], B: b[2]}, pos, nil
}

// FrameLabel is the body of a FrameLabel tag.
type FrameLabel struct {
	Name string
	// NamedAnchor is set for SWF 6+ named anchors.
	NamedAnchor bool
}

func decodeFrameLabel(ctx TagContext) (any, int, error) {
	var (
		l   FrameLabel
		err error
	)
	pos := ctx.Pos
	if l.Name, pos, err = ctx.NullTerminatedString(pos); err != nil {
		return nil, pos, err
	}
	if ctx.Remaining(pos) > 0 {
		var flag uint8
		if flag, pos, err = ctx.Buf.Uint8(pos); err != nil {
			return nil, pos, err
		}
		l.NamedAnchor = flag == 1
	}
	return l, pos, nil
}

// ScriptLimits is the body of a ScriptLimits tag.
type ScriptLimits struct {
	MaxRecursionDepth    uint16
	ScriptTimeoutSeconds uint16
}

func decodeScriptLimits(ctx TagContext) (any, int, error) {
	var (
		l   ScriptLimits
		err error
	)
	pos := ctx.Pos
	if l.MaxRecursionDepth, pos, err = ctx.Buf.Uint16(pos); err != nil {
		return nil, pos, err
	}
	if l.ScriptTimeoutSeconds, pos, err = ctx.Buf.Uint16(pos); err != nil {
		return nil, pos, err
	}
	return l, pos, nil
}

// FileAttributes is the body of a FileAttributes tag.
type FileAttributes struct {
	UseDirectBlit bool
	UseGPU        bool
	HasMetadata   bool
	ActionScript3 bool
	UseNetwork    bool
}

func decodeFileAttributes(ctx TagContext) (any, int, error) {
	var a FileAttributes
	pos := ctx.Pos
	// Reserved, UseDirectBlit, UseGPU, HasMetadata, ActionScript3, Reserved (2), UseNetwork.
	fields := []struct {
		width uint
		v     *bool
	}{
		{1, nil}, {1, &a.UseDirectBlit}, {1, &a.UseGPU}, {1, &a.HasMetadata},
		{1, &a.ActionScript3}, {2, nil}, {1, &a.UseNetwork}, {24, nil},
	}
	for _, f := range fields {
		v, next, err := ctx.Buf.Unsigned(pos, f.width)
		if err != nil {
			return nil, pos, err
		}
		pos = next
		if f.v != nil {
			*f.v = v == 1
		}
	}
	return a, pos, nil
}

var xmpSkipNamespaces = map[string]bool{
	"xmlns": true,
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#": true,
}

type rdf struct {
	XMLName      xml.Name
	Descriptions []rdfDescription `xml:"Description"`
}

// Note: Of the child elements we currently only handle the
// most common Dublin Core ones.
type rdfDescription struct {
	XMLName     xml.Name
	Attrs       []xml.Attr `xml:",any,attr"`
	Title       altList    `xml:"title"`
	Creator     seqList    `xml:"creator"`
	Description altList    `xml:"description"`
}

type altList struct {
	XMLName xml.Name
	Alt     struct {
		Items []string `xml:"li"`
	} `xml:"Alt"`
}

type seqList struct {
	XMLName xml.Name
	Seq     struct {
		Items []string `xml:"li"`
	} `xml:"Seq"`
}

type xmpmeta struct {
	XMLName xml.Name
	RDF     rdf `xml:"RDF"`
}

// MetadataProperty is a property from the XMP in a Metadata tag.
type MetadataProperty struct {
	// The XML namespace, e.g. "http://ns.adobe.com/xap/1.0/".
	Namespace string
	// Name is the local name with the first letter upper cased, e.g. "CreatorTool".
	Name string
	// Value is a string, or a []string for lists with more than one item.
	Value any
}

// Metadata is the body of a Metadata tag.
type Metadata struct {
	// XML is the raw XMP packet.
	XML        string
	Properties []MetadataProperty
}

// Get returns the value of the first property with the given name.
func (m *Metadata) Get(name string) (any, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

func decodeMetadata(ctx TagContext) (any, int, error) {
	s, pos, err := ctx.NullTerminatedString(ctx.Pos)
	if err != nil {
		return nil, pos, err
	}
	m := &Metadata{XML: s}

	var meta xmpmeta
	if err := xml.NewDecoder(strings.NewReader(s)).Decode(&meta); err != nil {
		return nil, pos, newInvalidFormatError(fmt.Errorf("decoding XMP: %w", err))
	}

	for _, desc := range meta.RDF.Descriptions {
		for _, attr := range desc.Attrs {
			if xmpSkipNamespaces[attr.Name.Space] {
				continue
			}
			m.Properties = append(m.Properties, MetadataProperty{
				Namespace: attr.Name.Space,
				Name:      firstUpper(attr.Name.Local),
				Value:     printableString(attr.Value),
			})
		}
		m.addList(desc.Title.XMLName, desc.Title.Alt.Items)
		m.addList(desc.Creator.XMLName, desc.Creator.Seq.Items)
		m.addList(desc.Description.XMLName, desc.Description.Alt.Items)
	}

	return m, pos, nil
}

func (m *Metadata) addList(name xml.Name, items []string) {
	if len(items) == 0 || name.Local == "" {
		return
	}
	var v any
	// This is how ExifTool does it:
	if len(items) == 1 {
		v = items[0]
	} else {
		v = items
	}
	m.Properties = append(m.Properties, MetadataProperty{
		Namespace: name.Space,
		Name:      firstUpper(name.Local),
		Value:     v,
	})
}
