// SPDX-License-Identifier: Apache-2.0

package variant

import "context"

// Variant is one identified piece of an upstream response.
type Variant struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
}

// Content is either Text or Object.
type Content interface {
	isContent()
}

// Text is plain, already cleaned text content.
type Text string

// Object is a decoded JSON object, kept unchanged.
type Object map[string]any

func (Text) isContent()   {}
func (Object) isContent() {}

// IDFunc generates an identifier for a single Variant.
type IDFunc func() string

// Source describes the raw upstream response handed to the pipeline.
type Source struct {
	// Raw is the response body exactly as received.
	Raw string
	ID  string
}

type Decoder interface {
	CanHandle(source Source) bool
	Decode(ctx context.Context, source Source) ([]Content, error)
	Name() string
}
