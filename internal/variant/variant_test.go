// SPDX-License-Identifier: Apache-2.0

package variant_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/variants-mcp/internal/variant"
)

func fixedID() string { return "123" }

// countingID returns an IDFunc that records how often it was called.
func countingID(calls *int) variant.IDFunc {
	return func() string {
		*calls++
		return "123"
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []variant.Variant
	}{
		{
			name: "array of strings is cleaned per element",
			raw:  `["Hello!", "<tag>how</tag> is it going?"]`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("Hello!")},
				{ID: "123", Content: variant.Text("how is it going?")},
			},
		},
		{
			name: "single object is wrapped unchanged",
			raw:  `{"key":"value"}`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Object{"key": "value"}},
			},
		},
		{
			name: "plain text becomes a single item",
			raw:  "Hello! How can I assist you today?",
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("Hello! How can I assist you today?")},
			},
		},
		{
			name: "null element becomes the string null",
			raw:  `["a", null]`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("a")},
				{ID: "123", Content: variant.Text("null")},
			},
		},
		{
			name: "objects inside an array stay structured",
			raw:  `[{"role":"assistant"}, "<b>hi</b>"]`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Object{"role": "assistant"}},
				{ID: "123", Content: variant.Text("hi")},
			},
		},
		{
			name: "numbers and booleans use their JSON literal",
			raw:  `[42, 1.50, true, false]`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("42")},
				{ID: "123", Content: variant.Text("1.50")},
				{ID: "123", Content: variant.Text("true")},
				{ID: "123", Content: variant.Text("false")},
			},
		},
		{
			name: "nested array is encoded as compact JSON",
			raw:  `[[1, "<b>", null]]`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text(`[1,"<b>",null]`)},
			},
		},
		{
			name: "top level JSON string is cleaned",
			raw:  `"  <p>quoted</p>  text "`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("quoted text")},
			},
		},
		{
			name: "top level null",
			raw:  "null",
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("null")},
			},
		},
		{
			name: "empty array yields no items",
			raw:  "[]",
			want: []variant.Variant{},
		},
		{
			name: "empty string takes the text path",
			raw:  "",
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("")},
			},
		},
		{
			name: "malformed JSON is treated as text",
			raw:  `{"key": <b>value</b>`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text(`{"key": value`)},
			},
		},
		{
			name: "trailing data after JSON is treated as text",
			raw:  `{"a":1} and more`,
			want: []variant.Variant{
				{ID: "123", Content: variant.Text(`{"a":1} and more`)},
			},
		},
		{
			name: "whitespace in plain text is collapsed",
			raw:  "  line one\n\n\tline   two  ",
			want: []variant.Variant{
				{ID: "123", Content: variant.Text("line one line two")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := variant.Create(fixedID, tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreate_GeneratorCalledOncePerItem(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "array of three", raw: `["a", {"b": 1}, null]`, want: 3},
		{name: "object", raw: `{"a": [1, 2, 3]}`, want: 1},
		{name: "text", raw: "not json", want: 1},
		{name: "empty array", raw: "[]", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got := variant.Create(countingID(&calls), tt.raw)
			assert.Len(t, got, tt.want)
			assert.Equal(t, tt.want, calls)
		})
	}
}

func TestCreate_IDsFollowOutputOrder(t *testing.T) {
	got := variant.Create(variant.NewSequenceGenerator("v"), `["first", "second", "third"]`)
	require.Len(t, got, 3)

	assert.Equal(t, "v1", got[0].ID)
	assert.Equal(t, variant.Text("first"), got[0].Content)
	assert.Equal(t, "v2", got[1].ID)
	assert.Equal(t, variant.Text("second"), got[1].Content)
	assert.Equal(t, "v3", got[2].ID)
	assert.Equal(t, variant.Text("third"), got[2].Content)
}

func TestCreate_NilGeneratorUsesUUIDs(t *testing.T) {
	got := variant.Create(nil, "hello")
	require.Len(t, got, 1)
	_, err := uuid.Parse(got[0].ID)
	assert.NoError(t, err)
}

func TestCreate_ConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := variant.Create(fixedID, `["<i>a</i>", {"k": "v"}]`)
			assert.Len(t, got, 2)
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// CleanText
// ---------------------------------------------------------------------------

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "<tag>how</tag> is it going?", want: "how is it going?"},
		{in: "<p class=\"x\">Hello</p>\n<p>World</p>", want: "Hello World"},
		{in: "<p>Hello</p> <p>World</p>", want: "Hello World"},
		{in: "no markup here", want: "no markup here"},
		{in: "   ", want: ""},
		{in: "a<br/>b", want: "ab"},
		{in: "5 > 3", want: "5 > 3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := variant.CleanText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, variant.CleanText(got), "cleanup should be idempotent")
		})
	}
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

type failingDecoder struct{}

func (failingDecoder) Name() string                  { return "broken" }
func (failingDecoder) CanHandle(variant.Source) bool { return true }
func (failingDecoder) Decode(context.Context, variant.Source) ([]variant.Content, error) {
	return nil, errors.New("boom")
}

func TestPipeline_RegisteredDecoders(t *testing.T) {
	p := variant.DefaultPipeline()
	assert.Equal(t, []string{"json", "text"}, p.RegisteredDecoders())
}

func TestPipeline_RunWithMeta(t *testing.T) {
	p := variant.DefaultPipeline()

	result, err := p.RunWithMeta(context.Background(), variant.Source{Raw: `["a", "b"]`, ID: "resp-1"}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "json", result.DecoderUsed)
	assert.Equal(t, 2, result.VariantCount)

	result, err = p.RunWithMeta(context.Background(), variant.Source{Raw: "plain", ID: "resp-2"}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "text", result.DecoderUsed)
	assert.Equal(t, 1, result.VariantCount)
}

func TestPipeline_NoDecoders(t *testing.T) {
	p := variant.NewPipeline()
	_, err := p.Run(context.Background(), variant.Source{Raw: "anything", ID: "resp"}, fixedID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no decoder found")
}

func TestPipeline_RequiresGenerator(t *testing.T) {
	_, err := variant.DefaultPipeline().Run(context.Background(), variant.Source{Raw: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id generator is required")
}

func TestPipeline_FallsBackAfterDecoderFailure(t *testing.T) {
	p := variant.NewPipeline(failingDecoder{}, variant.NewTextDecoder())
	result, err := p.RunWithMeta(context.Background(), variant.Source{Raw: "<b>ok</b>"}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "text", result.DecoderUsed)
	assert.Equal(t, []variant.Variant{{ID: "123", Content: variant.Text("ok")}}, result.Variants)
}

func TestPipeline_AllDecodersFail(t *testing.T) {
	calls := 0
	p := variant.NewPipeline(failingDecoder{})
	_, err := p.Run(context.Background(), variant.Source{Raw: "x"}, countingID(&calls))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `decoder "broken" failed`)
	assert.Zero(t, calls)
}

// ---------------------------------------------------------------------------
// Decoders
// ---------------------------------------------------------------------------

func TestJSONDecoder_CanHandle(t *testing.T) {
	d := variant.NewJSONDecoder()

	assert.True(t, d.CanHandle(variant.Source{Raw: `["a"]`}))
	assert.True(t, d.CanHandle(variant.Source{Raw: `{"a": 1}`}))
	assert.True(t, d.CanHandle(variant.Source{Raw: ` 42 `}))
	assert.False(t, d.CanHandle(variant.Source{Raw: ""}))
	assert.False(t, d.CanHandle(variant.Source{Raw: "Hello!"}))
	assert.False(t, d.CanHandle(variant.Source{Raw: `["a"] ["b"]`}))
}

func TestJSONDecoder_ObjectKeepsNumbers(t *testing.T) {
	contents, err := variant.NewJSONDecoder().Decode(context.Background(), variant.Source{Raw: `{"n": 1.5, "nested": {"ok": true}}`})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	obj, ok := contents[0].(variant.Object)
	require.True(t, ok, "expected Object, got %T", contents[0])
	assert.Equal(t, json.Number("1.5"), obj["n"])
	assert.Equal(t, map[string]any{"ok": true}, obj["nested"])
}

func TestTextDecoder_Decode(t *testing.T) {
	contents, err := variant.NewTextDecoder().Decode(context.Background(), variant.Source{Raw: "<h1>Title</h1>  body"})
	require.NoError(t, err)
	assert.Equal(t, []variant.Content{variant.Text("Title body")}, contents)
}

// ---------------------------------------------------------------------------
// Identifier generators
// ---------------------------------------------------------------------------

func TestGeneratorFor(t *testing.T) {
	gen, err := variant.GeneratorFor(variant.IDModeSequence, "item-")
	require.NoError(t, err)
	assert.Equal(t, "item-1", gen())
	assert.Equal(t, "item-2", gen())

	gen, err = variant.GeneratorFor("", "ignored")
	require.NoError(t, err)
	_, err = uuid.Parse(gen())
	assert.NoError(t, err)

	_, err = variant.GeneratorFor("snowflake", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported id mode")
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	gen := variant.NewSequenceGenerator("")
	seen := make(chan string, 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- gen()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[string]bool{}
	for id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, 100)
}

func TestVariant_MarshalJSON(t *testing.T) {
	variants := variant.Create(fixedID, `["Hello!", {"key": "value"}]`)

	data, err := json.Marshal(variants)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"123","content":"Hello!"},{"id":"123","content":{"key":"value"}}]`, string(data))
}
