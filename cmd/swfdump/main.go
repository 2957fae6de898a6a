// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Command swfdump prints the header and tags of a SWF file as JSON or YAML.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bep/swfmeta"
	"github.com/klauspost/compress/zlib"
	"sigs.k8s.io/yaml"
)

func main() {
	var (
		format  = flag.String("format", "json", "Output format, json or yaml")
		inflate = flag.Bool("inflate", false, "Inflate zlib compressed (CWS) files before decoding the tags")
		meta    = flag.Bool("meta", false, "Decode metadata tags (SetBackgroundColor, FrameLabel, FileAttributes, ...)")
		lenient = flag.Bool("lenient", false, "Allow tag decoders to read past the declared tag length")
		verbose = flag.Bool("v", false, "Print warnings to stderr")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: swfdump [flags] file.swf")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	if *inflate {
		header, _, err := swfmeta.DecodeHeader(data)
		if err != nil {
			log.Fatal(err)
		}
		switch header.Compression {
		case swfmeta.CompressionZlib:
			if data, err = inflateZlib(data); err != nil {
				log.Fatalf("Failed to inflate: %v", err)
			}
		case swfmeta.CompressionLZMA:
			log.Printf("LZMA compressed files are not supported; printing the header only")
		}
	}

	registry, err := swfmeta.NewDefaultRegistry()
	if err != nil {
		log.Fatal(err)
	}
	if *meta {
		if err := swfmeta.RegisterMetadataDecoders(registry); err != nil {
			log.Fatal(err)
		}
	}

	opts := swfmeta.Options{
		Data:            data,
		Registry:        registry,
		AllowTagOverrun: *lenient,
	}
	if *verbose {
		opts.Warnf = log.Printf
	}

	c, err := swfmeta.Decode(opts)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", flag.Arg(0), err)
	}

	out, err := marshal(newReport(c), *format)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		log.Fatal(err)
	}
}

// inflateZlib returns data with the body after the 8 byte fixed header
// inflated and the signature changed to FWS.
func inflateZlib(data []byte) ([]byte, error) {
	const fixedHeaderLen = 8
	if len(data) < fixedHeaderLen {
		return nil, fmt.Errorf("file too short")
	}
	r, err := zlib.NewReader(bytes.NewReader(data[fixedHeaderLen:]))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var buf bytes.Buffer
	buf.Write([]byte{'F'})
	buf.Write(data[1:fixedHeaderLen])
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type report struct {
	Signature   string      `json:"signature"`
	Compression string      `json:"compression"`
	Version     uint8       `json:"version"`
	FileLength  uint32      `json:"fileLength"`
	Width       float64     `json:"width,omitempty"`
	Height      float64     `json:"height,omitempty"`
	FrameRate   float64     `json:"frameRate,omitempty"`
	FrameCount  uint16      `json:"frameCount,omitempty"`
	Tags        []tagReport `json:"tags,omitempty"`
}

type tagReport struct {
	Code   swfmeta.TagCode `json:"code"`
	Name   string          `json:"name"`
	Offset int             `json:"offset"`
	Length uint32          `json:"length"`
	Body   any             `json:"body,omitempty"`
}

func newReport(c swfmeta.Container) report {
	h := c.Header
	r := report{
		Signature:   h.Signature,
		Compression: h.Compression.String(),
		Version:     h.Version,
		FileLength:  h.FileLength,
	}
	if h.Frame != nil {
		r.Width, r.Height = h.Frame.Size.Pixels()
		r.FrameRate = h.Frame.Rate
		r.FrameCount = h.Frame.Count
	}
	for _, t := range c.Tags {
		tr := tagReport{Code: t.Code, Name: t.Name, Offset: t.Offset, Length: t.Length}
		switch body := t.Body.(type) {
		case []byte:
			// Opaque bodies are summarized by their length.
		case *swfmeta.DefineSound:
			tr.Body = map[string]any{
				"id":            body.ID,
				"format":        body.Format.String(),
				"samplingRate":  body.SamplingRate,
				"bitsPerSample": body.BitsPerSample,
				"channels":      body.Channels.String(),
				"sampleCount":   body.SampleCount,
				"dataLength":    len(body.Data),
			}
		case swfmeta.RGB:
			tr.Body = body.String()
		case *swfmeta.Metadata:
			props := make(map[string]any, len(body.Properties))
			for _, p := range body.Properties {
				props[p.Name] = p.Value
			}
			tr.Body = props
		default:
			tr.Body = body
		}
		r.Tags = append(r.Tags, tr)
	}
	return r
}

func marshal(v any, format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
