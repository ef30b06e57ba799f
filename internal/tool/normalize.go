// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gemaraproj/variants-mcp/internal/variant"
)

// MetadataNormalizeResponse describes the normalize_response tool.
var MetadataNormalizeResponse = &mcp.Tool{
	Name: "normalize_response",
	Description: "Normalize a raw model or chat-completion response into a list of identified content items. " +
		"A JSON array yields one item per element, a JSON object yields a single structured item, and " +
		"anything else is treated as plain text. String content has HTML-like tags removed and " +
		"whitespace collapsed. Each item gets a freshly generated id.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw response text. May be JSON or plain text.",
			},
			"id_mode": map[string]interface{}{
				"type":        "string",
				"description": "How item ids are generated. Defaults to the server configuration.",
				"enum":        []string{variant.IDModeUUID, variant.IDModeSequence},
			},
			"id_prefix": map[string]interface{}{
				"type":        "string",
				"description": "Prefix for sequence ids. Only used when id_mode is sequence.",
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier of the upstream response, used in logs.",
			},
		},
	},
}

// InputNormalizeResponse is the input for the NormalizeResponse tool.
type InputNormalizeResponse struct {
	Content  string `json:"content"`
	IDMode   string `json:"id_mode,omitempty"`
	IDPrefix string `json:"id_prefix,omitempty"`
	SourceID string `json:"source_id,omitempty"`
}

// Item is a single normalized content item as returned to MCP clients.
type Item struct {
	ID string `json:"id"`
	// Content is either a string or a JSON object.
	Content any `json:"content"`
}

// OutputNormalizeResponse is the output for the NormalizeResponse tool.
type OutputNormalizeResponse struct {
	Items []Item `json:"items"`
	// DecoderUsed is the name of the decoder that produced the items.
	DecoderUsed string `json:"decoder_used"`
	TotalItems  int    `json:"total_items"`
}

// Normalizer holds what the normalize_response handler needs.
type Normalizer struct {
	pipeline *variant.Pipeline
	newID    variant.IDFunc
	log      *zap.Logger
}

// NewNormalizer creates a Normalizer using the default pipeline. newID is used
// when a call does not pick an id mode itself.
func NewNormalizer(newID variant.IDFunc, log *zap.Logger) *Normalizer {
	if newID == nil {
		newID = variant.NewUUIDGenerator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{
		pipeline: variant.DefaultPipeline(),
		newID:    newID,
		log:      log,
	}
}

// NormalizeResponse runs the variant pipeline over the provided response.
func (n *Normalizer) NormalizeResponse(ctx context.Context, _ *mcp.CallToolRequest, input InputNormalizeResponse) (*mcp.CallToolResult, OutputNormalizeResponse, error) {
	newID := n.newID
	if input.IDMode != "" {
		gen, err := variant.GeneratorFor(input.IDMode, input.IDPrefix)
		if err != nil {
			return nil, OutputNormalizeResponse{}, err
		}
		newID = gen
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	result, err := n.pipeline.RunWithMeta(ctx, variant.Source{Raw: input.Content, ID: sourceID}, newID)
	if err != nil {
		n.log.Error("normalize failed", zap.String("source_id", sourceID), zap.Error(err))
		return nil, OutputNormalizeResponse{}, err
	}

	n.log.Debug("normalized response",
		zap.String("source_id", sourceID),
		zap.String("decoder", result.DecoderUsed),
		zap.Int("items", result.VariantCount),
	)

	return nil, OutputNormalizeResponse{
		Items:       ToItems(result.Variants),
		DecoderUsed: result.DecoderUsed,
		TotalItems:  result.VariantCount,
	}, nil
}

// ToItems converts variants into their wire form.
func ToItems(variants []variant.Variant) []Item {
	items := make([]Item, len(variants))
	for i, v := range variants {
		items[i] = Item{ID: v.ID, Content: v.Content}
	}
	return items
}
