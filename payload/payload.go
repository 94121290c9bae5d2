// Package payload normalizes the loosely typed payload shapes delivered by
// the push stream into canonical content. The network hands payloads over as
// plain strings, raw bytes, numeric byte arrays or serialized Buffer wrapper
// objects; everything funnels through Normalize exactly once so live and
// replayed messages decode identically.
package payload

import (
	"encoding/json"
	"strconv"
	"strings"

	"mixterm/network"
)

// Kind tags one normalized payload variant.
type Kind int

const (
	// KindAbsent means no payload was delivered.
	KindAbsent Kind = iota
	// KindString is a plain string payload.
	KindString
	// KindBytes is a raw or reconstructed byte sequence.
	KindBytes
	// KindObject is a decoded JSON object.
	KindObject
	// KindOther is anything else; rendered by JSON serialization.
	KindOther
)

// Value is the normalized form of an incoming payload.
type Value struct {
	Kind   Kind
	Str    string
	Bytes  []byte
	Object map[string]any
	Raw    any
}

// Normalize converts any payload shape into a tagged Value. Buffer wrapper
// objects ({"type":"Buffer","data":[...]}) collapse into their byte sequence.
func Normalize(data any) Value {
	switch v := data.(type) {
	case nil:
		return Value{Kind: KindAbsent}
	case string:
		return Value{Kind: KindString, Str: v}
	case []byte:
		return Value{Kind: KindBytes, Bytes: v, Raw: v}
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return Value{Kind: KindOther, Raw: string(v)}
		}
		return Normalize(decoded)
	case []any:
		if raw, ok := numericBytes(v); ok {
			return Value{Kind: KindBytes, Bytes: raw, Raw: v}
		}
		return Value{Kind: KindOther, Raw: v}
	case map[string]any:
		if raw, ok := bufferWrapperBytes(v); ok {
			return Value{Kind: KindBytes, Bytes: raw, Raw: v}
		}
		return Value{Kind: KindObject, Object: v, Raw: v}
	default:
		return Value{Kind: KindOther, Raw: v}
	}
}

// DecodeContent renders a payload as canonical UTF-8 text for its message
// category. It never fails: undecodable payloads degrade to JSON text or a
// bracketed category tag.
func DecodeContent(category string, data any) string {
	switch category {
	case network.CategoryPlainText:
		return decodePlainText(data)
	case network.CategorySystemAccountSnapshot:
		return decodeAccountSnapshot(data)
	case "":
		return "[UNKNOWN]"
	default:
		return "[" + category + "]"
	}
}

func decodePlainText(data any) string {
	value := Normalize(data)
	switch value.Kind {
	case KindString:
		return value.Str
	case KindBytes:
		return string(value.Bytes)
	case KindAbsent:
		data = ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeAccountSnapshot(data any) string {
	amount := "?"
	symbol := "Asset"
	if obj := DecodeObject(data); obj != nil {
		if v := stringField(obj, "amount"); v != "" {
			amount = v
		}
		if asset, ok := obj["asset"].(map[string]any); ok {
			if v := stringField(asset, "symbol"); v != "" {
				symbol = v
			}
		}
	}
	return "Transfer: " + amount + " " + symbol
}

// DecodeObject decodes a payload into a JSON object, parsing string and byte
// payloads as JSON first. Returns nil when no object can be recovered.
func DecodeObject(data any) map[string]any {
	value := Normalize(data)
	switch value.Kind {
	case KindObject:
		return value.Object
	case KindString:
		return parseObject([]byte(value.Str))
	case KindBytes:
		return parseObject(value.Bytes)
	default:
		return nil
	}
}

// ParseRecallTarget extracts the message_id a recall payload points at.
// The second return is false when decoding fails at any stage; callers treat
// that as a no-op recall with no target.
func ParseRecallTarget(data any) (string, bool) {
	obj := DecodeObject(data)
	if obj == nil {
		return "", false
	}
	target := strings.TrimSpace(stringField(obj, "message_id"))
	if target == "" {
		return "", false
	}
	return target, true
}

// ExtractParticipants pulls a normalized participant list from a system
// conversation payload's participants or participant_sessions field. Entries
// may be plain identifiers or objects carrying a user_id.
func ExtractParticipants(data any) []string {
	obj := DecodeObject(data)
	if obj == nil {
		return nil
	}

	entries, ok := obj["participants"].([]any)
	if !ok {
		entries, ok = obj["participant_sessions"].([]any)
	}
	if !ok {
		return nil
	}

	participants := make([]string, 0, len(entries))
	for _, entry := range entries {
		var id string
		switch v := entry.(type) {
		case string:
			id = v
		case map[string]any:
			id = stringField(v, "user_id")
		}
		id = strings.TrimSpace(id)
		if id != "" {
			participants = append(participants, id)
		}
	}
	return participants
}

func parseObject(raw []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func numericBytes(entries []any) ([]byte, bool) {
	raw := make([]byte, 0, len(entries))
	for _, entry := range entries {
		n, ok := entry.(float64)
		if !ok || n != float64(byte(n)) {
			return nil, false
		}
		raw = append(raw, byte(n))
	}
	return raw, true
}

func bufferWrapperBytes(obj map[string]any) ([]byte, bool) {
	if kind, _ := obj["type"].(string); kind != "Buffer" {
		return nil, false
	}
	entries, ok := obj["data"].([]any)
	if !ok {
		return nil, false
	}
	raw := make([]byte, 0, len(entries))
	for _, entry := range entries {
		n, ok := entry.(float64)
		if !ok || n != float64(byte(n)) {
			return nil, false
		}
		raw = append(raw, byte(n))
	}
	return raw, true
}
