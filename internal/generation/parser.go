package generation

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape is the kind of structured record expected in a response.
type Shape int

const (
	// ShapeObject expects a JSON object.
	ShapeObject Shape = iota
	// ShapeArray expects a JSON array.
	ShapeArray
)

// String returns the shape name.
func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

func (s Shape) opener() byte {
	if s == ShapeArray {
		return '['
	}
	return '{'
}

var (
	objectRegion = regexp.MustCompile(`(?s)\{.*\}`)
	arrayRegion  = regexp.MustCompile(`(?s)\[.*\]`)

	// opening fence, optionally followed by a language tag
	fenceOpen = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
)

// StripFence removes a fenced code block marker from text. When a fence is
// present, the content between the opening fence and the closing fence (or
// the end of the text, when the closing fence is missing) is returned.
// Text without a fence is returned unchanged.
func StripFence(text string) string {
	loc := fenceOpen.FindStringIndex(text)
	if loc == nil {
		return text
	}
	body := text[loc[1]:]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}

// Extract returns the best-guess structured region of text: the span from
// the first opening token to the last closing token of the requested shape.
// It does not check that the region is valid JSON.
func Extract(text string, shape Shape) (string, error) {
	body := StripFence(text)

	re := objectRegion
	if shape == ShapeArray {
		re = arrayRegion
	}

	region := re.FindString(body)
	if region == "" {
		return "", &ParseError{
			Reason: "no " + shape.String() + " found in response",
		}
	}
	return region, nil
}

// Parse extracts the structured region of text and decodes it into v with
// a strict JSON decoder. It never repairs malformed input.
func Parse(text string, shape Shape, v any) error {
	region, err := Extract(text, shape)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(region), v); err != nil {
		return &ParseError{
			Reason: "invalid " + shape.String(),
			Err:    err,
		}
	}
	return nil
}

// parseRegion extracts the structured region and checks that it is valid
// JSON, returning the region on success.
func parseRegion(text string, shape Shape) (string, error) {
	region, err := Extract(text, shape)
	if err != nil {
		return "", err
	}
	if !json.Valid([]byte(region)) {
		return "", &ParseError{Reason: "invalid " + shape.String()}
	}
	return region, nil
}
