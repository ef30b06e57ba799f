// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"context"
	"errors"
	"fmt"
)

type Pipeline struct {
	decoders []Decoder
}

// NewPipeline creates a new Pipeline with the provided decoders. Decoders are
// tried in registration order.
func NewPipeline(decoders ...Decoder) *Pipeline {
	return &Pipeline{
		decoders: decoders,
	}
}

// DefaultPipeline tries JSON first and falls back to plain text, so it
// accepts every input.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		NewJSONDecoder(),
		NewTextDecoder(),
	)
}

// RunResult is the output of a successful pipeline run.
type RunResult struct {
	Variants     []Variant
	DecoderUsed  string
	VariantCount int
}

func (p *Pipeline) Run(ctx context.Context, source Source, newID IDFunc) ([]Variant, error) {
	result, err := p.RunWithMeta(ctx, source, newID)
	if err != nil {
		return nil, err
	}
	return result.Variants, nil
}

// RunWithMeta decodes the source with the first decoder that can handle it.
// If that decoder fails, the next capable one is tried. newID is called
// exactly once per produced Variant, in output order.
func (p *Pipeline) RunWithMeta(ctx context.Context, source Source, newID IDFunc) (RunResult, error) {
	if newID == nil {
		return RunResult{}, fmt.Errorf("id generator is required")
	}

	var errs []error
	for _, decoder := range p.decoders {
		if !decoder.CanHandle(source) {
			continue
		}
		contents, err := decoder.Decode(ctx, source)
		if err != nil {
			errs = append(errs, fmt.Errorf("decoder %q failed: %w", decoder.Name(), err))
			continue
		}

		variants := make([]Variant, len(contents))
		for i, content := range contents {
			variants[i] = Variant{ID: newID(), Content: content}
		}
		return RunResult{
			Variants:     variants,
			DecoderUsed:  decoder.Name(),
			VariantCount: len(variants),
		}, nil
	}

	if len(errs) > 0 {
		return RunResult{}, errors.Join(errs...)
	}
	return RunResult{}, fmt.Errorf("unsupported response: no decoder found for source %q", source.ID)
}

// RegisteredDecoders returns the names of all currently registered decoders.
func (p *Pipeline) RegisteredDecoders() []string {
	names := make([]string, len(p.decoders))
	for i, decoder := range p.decoders {
		names[i] = decoder.Name()
	}
	return names
}

var defaultPipeline = DefaultPipeline()

// Create normalizes a raw upstream response into Variants using the default
// pipeline. It never fails: input that is not JSON is treated as text. A nil
// newID falls back to random UUIDs.
func Create(newID IDFunc, raw string) []Variant {
	if newID == nil {
		newID = NewUUIDGenerator()
	}
	variants, err := defaultPipeline.Run(context.Background(), Source{Raw: raw}, newID)
	if err != nil {
		// The text decoder accepts everything, so this is unreachable.
		return []Variant{{ID: newID(), Content: Text(CleanText(raw))}}
	}
	return variants
}
