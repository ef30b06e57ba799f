// SPDX-License-Identifier: Apache-2.0

package variant

import "context"

// TextDecoder is the fallback for anything that is not JSON. The whole
// response becomes a single cleaned Text.
type TextDecoder struct{}

func NewTextDecoder() *TextDecoder {
	return &TextDecoder{}
}

func (d *TextDecoder) Name() string {
	return "text"
}

func (d *TextDecoder) CanHandle(Source) bool {
	return true
}

func (d *TextDecoder) Decode(_ context.Context, source Source) ([]Content, error) {
	return []Content{Text(CleanText(source.Raw))}, nil
}
