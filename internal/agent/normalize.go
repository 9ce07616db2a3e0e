package agent

import (
	"encoding/json"
	"strconv"

	"pushagent/internal/types"
)

// nidAliases are the candidate keys for the notification instance id, in
// resolution order. Top-level keys are checked before their nested-under-
// `data` counterparts, and the first defined value wins.
var nidAliases = []string{"nid", "notificationId"}

// Normalize converts an as-received push message body into a PushPayload.
//
// The body may be a structured JSON object, or raw text containing one
// (double-encoded by some push transports). When structured parsing fails,
// Normalize retries against the text interpretation; when that also fails it
// yields an empty payload rather than an error, so downstream display
// defaults apply. A malformed push never surfaces a failure.
//
// Scalar fields resolve top-level first, then nested under `data`, then a
// hardcoded default. The payload's action list is passed through as
// received; the presenter applies slug and title defaults.
func Normalize(body []byte) types.PushPayload {
	doc := parseBody(body)

	base := doc
	nested := childObject(doc, "data")

	p := types.PushPayload{
		NID:   firstDefined(base, nested, nidAliases...),
		Title: resolveField(base, nested, "title", types.DefaultTitle),
		Body:  resolveField(base, nested, "body", ""),
		Icon:  resolveField(base, nested, "icon", types.DefaultIcon),
		Image: resolveField(base, nested, "image", ""),
		URL:   resolveField(base, nested, "url", ""),
	}
	p.Actions = resolveActions(base, nested)
	return p
}

// parseBody attempts structured parsing of the push body. The second attempt
// treats the body as a JSON-encoded string whose contents are the structured
// object. Total failure yields an empty document.
func parseBody(body []byte) map[string]any {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err == nil {
		return doc
	}

	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		if err := json.Unmarshal([]byte(text), &doc); err == nil {
			return doc
		}
	}

	return map[string]any{}
}

// childObject returns doc[key] when it is an object, else an empty map.
func childObject(doc map[string]any, key string) map[string]any {
	if child, ok := doc[key].(map[string]any); ok {
		return child
	}
	return map[string]any{}
}

// resolveField returns the first non-empty string among the top-level value,
// the nested value, and the default.
func resolveField(base, nested map[string]any, key, def string) string {
	if v := stringValue(base[key]); v != "" {
		return v
	}
	if v := stringValue(nested[key]); v != "" {
		return v
	}
	return def
}

// firstDefined checks each alias at the top level and then nested, returning
// the first key that is present with a defined value. Unlike resolveField
// it does not fall through on empty strings: presence is what counts.
func firstDefined(base, nested map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := base[key]; ok && v != nil {
			return stringValue(v)
		}
		if v, ok := nested[key]; ok && v != nil {
			return stringValue(v)
		}
	}
	return ""
}

// stringValue coerces the loosely-typed payload values the wire can carry.
// Numeric ids are tolerated; anything else non-string is treated as absent.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// resolveActions extracts the raw action list, preferring a top-level
// `actions` array (even an empty one) over the nested one.
func resolveActions(base, nested map[string]any) []types.RawAction {
	raw, ok := base["actions"].([]any)
	if !ok {
		raw, ok = nested["actions"].([]any)
	}
	if !ok {
		return nil
	}

	actions := make([]types.RawAction, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		actions = append(actions, types.RawAction{
			Action: stringValue(obj["action"]),
			Title:  stringValue(obj["title"]),
			URL:    stringValue(obj["url"]),
		})
	}
	return actions
}
