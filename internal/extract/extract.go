// Package extract recovers structured data from unreliable model replies.
// Replies may carry a structured payload, bare JSON, JSON inside code
// fences, or JSON buried in surrounding prose.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/insightflow/leadscout/pkg/agent"
)

// RawContentKey holds the unparsed reply text when no strategy yields
// a JSON object.
const RawContentKey = "raw_content"

// payloadKeys are the structured-payload fields that may carry a
// JSON-encoded string needing a second parse.
var payloadKeys = []string{"content", "text", "result", "output"}

// ParseReply extracts a JSON object from a reply. The structured payload
// wins when present; otherwise the text content is parsed with
// ExtractJSON. A reply that defeats every strategy yields a map holding
// the raw text under RawContentKey.
func ParseReply(r *agent.Reply) map[string]any {
	if r != nil && len(r.Structured) > 0 {
		// A payload whose sole field is a JSON-encoded string needs a
		// second parse. Payloads carrying real fields are returned
		// as-is even when one of them would parse.
		if len(r.Structured) == 1 {
			for _, key := range payloadKeys {
				if val, ok := r.Structured[key].(string); ok {
					if parsed, ok := ExtractJSON(val); ok {
						return parsed
					}
				}
			}
		}
		return r.Structured
	}

	var text string
	if r != nil {
		text = r.Text()
	}
	if parsed, ok := ExtractJSON(text); ok {
		return parsed
	}
	return map[string]any{RawContentKey: text}
}

// ReplyText extracts prose from a reply, for stages whose output is a
// document rather than JSON. Non-empty direct content wins, then the
// longest string in the structured payload, then concatenated blocks.
func ReplyText(r *agent.Reply) string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}

	if len(r.Structured) > 0 {
		for _, key := range payloadKeys {
			if val, ok := r.Structured[key].(string); ok && len(val) > 10 {
				return val
			}
		}
		longest := ""
		for _, v := range r.Structured {
			if s, ok := v.(string); ok && len(s) > len(longest) {
				longest = s
			}
		}
		if len(longest) > 10 {
			return longest
		}
	}

	if joined := strings.Join(r.Blocks, "\n"); strings.TrimSpace(joined) != "" {
		return joined
	}
	return ""
}

// ExtractJSON finds a JSON object in text, trying strategies in order:
// direct parse, a ```json fence, any fence, then a backward scan over
// opening-brace positions with string-and-escape aware depth matching.
func ExtractJSON(text string) (map[string]any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if obj, ok := parseObject(text); ok {
		return obj, true
	}
	if obj, ok := parseJSONFence(text); ok {
		return obj, true
	}
	if obj, ok := parseAnyFence(text); ok {
		return obj, true
	}
	return parseBraceScan(text)
}

func parseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func parseJSONFence(text string) (map[string]any, bool) {
	start := strings.Index(text, "```json")
	if start < 0 {
		return nil, false
	}
	start += len("```json")
	end := strings.Index(text[start:], "```")
	if end < 0 {
		return nil, false
	}
	return parseObject(strings.TrimSpace(text[start : start+end]))
}

func parseAnyFence(text string) (map[string]any, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return nil, false
	}
	start += len("```")
	// The rest of the fence's first line may be a language tag.
	newline := strings.Index(text[start:], "\n")
	if newline < 0 {
		return nil, false
	}
	body := start + newline
	end := strings.Index(text[body:], "```")
	if end < 0 {
		return nil, false
	}
	return parseObject(strings.TrimSpace(text[body : body+end]))
}

// parseBraceScan tries every opening brace from the end of the text
// backward, so the object opened by the last brace wins; when objects
// nest, that is the innermost one. Depth counting ignores braces inside
// quoted strings and honors backslash escapes.
func parseBraceScan(text string) (map[string]any, bool) {
	var opens []int
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			opens = append(opens, i)
		}
	}

	for n := len(opens) - 1; n >= 0; n-- {
		start := opens[n]
		depth := 0
		inString := false
		escaped := false
	scan:
		for i := start; i < len(text); i++ {
			ch := text[i]
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					if obj, ok := parseObject(text[start : i+1]); ok {
						return obj, true
					}
					break scan
				}
			}
		}
	}
	return nil, false
}
