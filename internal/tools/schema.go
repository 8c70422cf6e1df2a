package tools

// JSON Schema builders for tool response contracts. Objects do not forbid
// additional properties; unknown keys from the model are ignored on decode.

// String is {"type":"string"}.
func String() map[string]any { return map[string]any{"type": "string"} }

// Number is {"type":"number"} with an optional inclusive maximum.
func Number(max ...float64) map[string]any {
	s := map[string]any{"type": "number"}
	if len(max) > 0 {
		s["maximum"] = max[0]
	}
	return s
}

// Integer is {"type":"integer"} with an optional inclusive maximum.
func Integer(max ...int) map[string]any {
	s := map[string]any{"type": "integer"}
	if len(max) > 0 {
		s["maximum"] = max[0]
	}
	return s
}

// Enum is a string restricted to values.
func Enum(values ...string) map[string]any {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]any{"type": "string", "enum": vs}
}

// Array of items with optional bounds; a negative bound is omitted.
func Array(items map[string]any, minItems, maxItems int) map[string]any {
	s := map[string]any{"type": "array", "items": items}
	if minItems >= 0 {
		s["minItems"] = minItems
	}
	if maxItems >= 0 {
		s["maxItems"] = maxItems
	}
	return s
}

// Strings is an unbounded array of strings.
func Strings() map[string]any { return Array(String(), -1, -1) }

// Object with properties; required names must be present.
func Object(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		s["required"] = req
	}
	return s
}

// AnyOf accepts a value matching at least one of the alternatives.
func AnyOf(alternatives ...map[string]any) map[string]any {
	alts := make([]any, len(alternatives))
	for i, a := range alternatives {
		alts[i] = a
	}
	return map[string]any{"anyOf": alts}
}
