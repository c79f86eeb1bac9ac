package generation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePlan struct {
	Name   string   `json:"name"`
	Level  int      `json:"level"`
	Topics []string `json:"topics"`
	Nested struct {
		Hours float64 `json:"hours"`
	} `json:"nested"`
}

func TestParse_ExtractsObjectFromNoise(t *testing.T) {
	t.Parallel()

	want := samplePlan{Name: "Albanian Foundations", Level: 1, Topics: []string{"greetings", "family"}}
	want.Nested.Hours = 40
	encoded, err := json.Marshal(want)
	require.NoError(t, err)
	j := string(encoded)

	tests := []struct {
		name string
		text string
	}{
		{"bare", j},
		{"json fence", "```json\n" + j + "\n```"},
		{"fence without language tag", "```\n" + j + "\n```"},
		{"fence with trailing space after tag", "```json \n" + j + "\n```"},
		{"prose around", "Here is the plan you asked for:\n" + j + "\nLet me know if you need changes."},
		{"prose around fence", "Sure!\n```json\n" + j + "\n```\nAnything else?"},
		{"missing closing fence", "```json\n" + j},
		{"indented", "\n\n    " + j + "    \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got samplePlan
			require.NoError(t, generation.Parse(tt.text, generation.ShapeObject, &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_ExtractsArray(t *testing.T) {
	t.Parallel()

	text := "The items are:\n```json\n[{\"english_phrase\": \"hello\"}, {\"english_phrase\": \"bye\"}]\n```"

	var got []map[string]string
	require.NoError(t, generation.Parse(text, generation.ShapeArray, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "bye", got[1]["english_phrase"])
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		shape generation.Shape
	}{
		{"no region", "I cannot help with that.", generation.ShapeObject},
		{"array expected, object given", `{"a": 1}`, generation.ShapeArray},
		{"trailing comma is not repaired", `{"a": 1,}`, generation.ShapeObject},
		{"truncated", `{"a": [1, 2`, generation.ShapeObject},
		{"empty", "", generation.ShapeObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			err := generation.Parse(tt.text, tt.shape, &v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generation.ErrParse), "expected ErrParse, got %v", err)

			var perr *generation.ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestExtract_GreedyRegion(t *testing.T) {
	t.Parallel()

	region, err := generation.Extract(`note {"a": {"b": 1}} end`, generation.ShapeObject)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, region)
}

func TestStripFence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", generation.StripFence("plain"))
	assert.Equal(t, "{}\n", generation.StripFence("```json\n{}\n```"))
	assert.Equal(t, "[1]", generation.StripFence("```[1]```"))
}
