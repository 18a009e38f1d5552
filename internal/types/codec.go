package types

import "encoding/json"

// StringSet is a set of strings persisted as a JSON array column. Element
// order is preserved on round-trip (spec.md §3: "ordering of elements
// inside a JSON list is preserved").
type StringSet []string

// Contains does a linear membership check; sets here are small (tags,
// capabilities, depends_on), so no index is warranted.
func (s StringSet) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// StringMap is a free-form string-to-string mapping persisted as a JSON
// object column (capabilities detail, event detail, agent metadata).
type StringMap map[string]string

// EncodeStringSet formats a StringSet as JSON text for storage. Mirrors the
// teacher's formatJSONStringArray: nil/empty encodes to "" rather than
// "null" or "[]", so an absent column round-trips as absent.
func EncodeStringSet(s StringSet) string {
	if len(s) == 0 {
		return ""
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeStringSet parses a JSON array column back into a StringSet. An
// empty string decodes to nil. Malformed JSON is swallowed to nil rather
// than propagated — the teacher's parseJSONStringArray does the same,
// treating it as "shouldn't happen with valid data" rather than a decode
// path callers need to handle on every read.
func DecodeStringSet(s string) StringSet {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return StringSet(out)
}

// EncodeStringMap formats a StringMap as JSON text for storage.
func EncodeStringMap(m StringMap) string {
	if len(m) == 0 {
		return ""
	}
	data, err := json.Marshal(map[string]string(m))
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeStringMap parses a JSON object column back into a StringMap.
func DecodeStringMap(s string) StringMap {
	if s == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return StringMap(out)
}
