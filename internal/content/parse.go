// Package content turns wire payloads into typed message content.
//
// Two paths exist. Decode handles the structured envelope content the
// current backend sends. Parse handles raw strings from older persisted
// history, where the assistant's JSON may be inline or wrapped in a fenced
// code block; anything that does not validate becomes plain text.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// Parse converts a raw message string into content. It never fails: input
// that is not a valid structured payload yields Text with the original
// string.
func Parse(raw string) domain.Content {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if c, err := decodeObject([]byte(trimmed)); err == nil {
			return c
		}
	}

	if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
		if c, err := decodeObject([]byte(strings.TrimSpace(m[1]))); err == nil {
			return c
		}
	}

	return domain.Text{Content: raw}
}

// Decode converts structured envelope content. A JSON string is treated as
// legacy raw content and goes through Parse.
func Decode(raw json.RawMessage) (domain.Content, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInvalidContent)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidContent, err)
		}
		return Parse(s), nil
	case '{':
		return decodeObject(data)
	default:
		return nil, fmt.Errorf("%w: content must be an object or string", domain.ErrInvalidContent)
	}
}

// Encode writes content with its type discriminant.
func Encode(c domain.Content) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil content", domain.ErrInvalidContent)
	}
	return json.Marshal(c)
}

// TypeOf returns the raw "type" of a payload object without decoding it.
func TypeOf(raw json.RawMessage) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	return head.Type
}

func decodeObject(data []byte) (domain.Content, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidContent, err)
	}

	var tag string
	if err := json.Unmarshal(fields["type"], &tag); err != nil || tag == "" {
		return nil, fmt.Errorf("%w: missing type", domain.ErrInvalidContent)
	}

	kind := kindOf(tag)
	keys, known := requiredKeys[kind]
	if !known {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownContent, tag)
	}
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("%w: %s: missing %q", domain.ErrInvalidContent, tag, k)
		}
	}

	c, err := unmarshalAs(kind, tag, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidContent, tag, err)
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// kindOf maps a wire tag to its content type. System payloads are tagged
// with their status.
func kindOf(tag string) domain.ContentType {
	switch domain.SystemStatus(tag) {
	case domain.SystemConnected, domain.SystemError, domain.SystemThinking:
		return domain.ContentSystem
	}
	return domain.ContentType(tag)
}

func unmarshalAs(kind domain.ContentType, tag string, data []byte) (domain.Content, error) {
	switch kind {
	case domain.ContentText:
		var v domain.Text
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentIngredients:
		var v domain.Ingredients
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentRecipeName:
		var v domain.RecipeName
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentSessionName:
		var v domain.SessionName
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentRecipe:
		var v domain.RecipeContent
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentRecipeUpdate:
		var v domain.RecipeUpdate
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentTimer:
		var v domain.Timer
		err := json.Unmarshal(data, &v)
		return v, err
	case domain.ContentSystem:
		var v domain.System
		err := json.Unmarshal(data, &v)
		v.Status = domain.SystemStatus(tag)
		return v, err
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownContent, tag)
	}
}
