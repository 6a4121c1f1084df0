package models

import (
	"encoding/base64"
	"strings"
)

// BlockKind tags a ContentBlock variant.
type BlockKind string

const (
	BlockImage BlockKind = "image"
	BlockText  BlockKind = "text"
)

// ContentBlock is one unit of a multi-modal prompt: either an ImageBlock or a TextBlock.
type ContentBlock interface {
	Kind() BlockKind
}

// ImageBlock embeds an image inline; the provider cannot reach caller storage.
type ImageBlock struct {
	MediaType string
	Data      []byte
}

func (ImageBlock) Kind() BlockKind { return BlockImage }

// DataURL renders the block as a self-describing data URL.
func (b ImageBlock) DataURL() string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(b.MediaType) + base64.StdEncoding.EncodedLen(len(b.Data)))
	sb.WriteString("data:")
	sb.WriteString(b.MediaType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(b.Data))
	return sb.String()
}

// TextBlock carries plain prompt text.
type TextBlock struct {
	Text string
}

func (TextBlock) Kind() BlockKind { return BlockText }

// Prompt is the provider-facing request body before wire encoding.
// Image blocks always precede the single trailing text block.
type Prompt struct {
	SystemInstruction string
	Content           []ContentBlock
}

// ImageCount returns the number of image blocks in the prompt.
func (p Prompt) ImageCount() int {
	n := 0
	for _, b := range p.Content {
		if b.Kind() == BlockImage {
			n++
		}
	}
	return n
}

// ProviderOutcome is the result of exactly one provider call attempt.
// When OK is false, Reason explains why; Mock marks a call skipped by configuration.
type ProviderOutcome struct {
	OK     bool
	Text   string
	Reason string
	Mock   bool
}

// Success wraps the raw text returned by the provider.
func Success(text string) ProviderOutcome {
	return ProviderOutcome{OK: true, Text: text}
}

// Failure records why the provider call produced no usable text.
func Failure(reason string) ProviderOutcome {
	return ProviderOutcome{Reason: reason}
}

// MockOutcome is returned when mock mode disables the provider call.
func MockOutcome() ProviderOutcome {
	return ProviderOutcome{Reason: "mock mode enabled", Mock: true}
}
