package generation

import (
	"strings"
)

// structure is the result of a shallow, string-aware scan over text that is
// expected to hold a JSON record.
type structure struct {
	open     []int // offsets of '{' and '[' not yet closed, outermost first
	inString bool  // text ended inside a string literal
}

// scanStructure walks text tracking bracket depth outside string literals.
// Mismatched closers are tolerated; they simply pop the innermost opener.
func scanStructure(text string) structure {
	var st structure
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if st.inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				st.inString = false
			}
			continue
		}
		switch c {
		case '"':
			st.inString = true
		case '{', '[':
			st.open = append(st.open, i)
		case '}', ']':
			if len(st.open) > 0 {
				st.open = st.open[:len(st.open)-1]
			}
		}
	}
	return st
}

// IsTruncated reports whether text looks like an incomplete structured
// record of the given shape.
//
// Text whose structured region parses is never truncated. Otherwise the
// text is truncated when any of these hold: an opening brace or bracket is
// left unclosed, a string literal is left open, the last character is a
// comma, colon or opener, or the text ends with an ellipsis. Text with no
// opening token at all is a parse failure, not a truncation.
func IsTruncated(text string, shape Shape) bool {
	if _, err := parseRegion(text, shape); err == nil {
		return false
	}

	body := strings.TrimSpace(StripFence(text))
	start := strings.IndexByte(body, shape.opener())
	if start < 0 {
		return false
	}
	body = body[start:]

	st := scanStructure(body)
	if len(st.open) > 0 || st.inString {
		return true
	}

	switch body[len(body)-1] {
	case ',', ':', '{', '[':
		return true
	}

	return strings.HasSuffix(body, "...") || strings.HasSuffix(body, "…")
}

// Merge stitches a continuation onto previously accumulated text.
//
// When the continuation begins a fresh structured region (its first
// non-space character is '{' or '['), the innermost unclosed region of the
// same kind at the end of existing is dropped and replaced by the
// continuation. Otherwise the continuation is appended as is.
func Merge(existing, continuation string) string {
	cont := StripFence(continuation)
	trimmed := strings.TrimSpace(cont)
	if trimmed == "" {
		return existing
	}

	opener := trimmed[0]
	if opener != '{' && opener != '[' {
		return existing + cont
	}

	return dropDangling(existing, opener) + trimmed
}

// dropDangling cuts existing at the innermost unclosed opener of the given
// kind. When there is none, existing is returned unchanged.
func dropDangling(existing string, opener byte) string {
	st := scanStructure(existing)
	for i := len(st.open) - 1; i >= 0; i-- {
		if existing[st.open[i]] == opener {
			return existing[:st.open[i]]
		}
	}
	return existing
}
