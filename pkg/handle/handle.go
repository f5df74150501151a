// Package handle turns account references into canonical handles.
package handle

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Handle is the canonical string form of an account
type Handle string

func (h Handle) String() string { return string(h) }

// Reference is an account reference as supplied by the caller: either a
// numeric account id or a string (profile URL or handle, optionally
// @-prefixed). The zero value is the empty string reference.
type Reference struct {
	id   int64
	text string
	isID bool
}

// ID creates a numeric account reference
func ID(id int64) Reference {
	return Reference{id: id, isID: true}
}

// Text creates a string account reference
func Text(s string) Reference {
	return Reference{text: s}
}

// Parse converts a decoded YAML/JSON value into a Reference. Integral numbers
// become numeric references; strings are kept verbatim.
func Parse(v any) (Reference, error) {
	switch val := v.(type) {
	case string:
		return Text(val), nil
	case int:
		return ID(int64(val)), nil
	case int64:
		return ID(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Reference{}, fmt.Errorf("account id %d out of range", val)
		}
		return ID(int64(val)), nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return Reference{}, fmt.Errorf("account id %v is not an integer", val)
		}
		if val >= 1<<63 || val < -(1<<63) {
			return Reference{}, fmt.Errorf("account id %v out of range", val)
		}
		return ID(int64(val)), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return Reference{}, fmt.Errorf("account id %q is not an integer: %w", val, err)
		}
		return ID(n), nil
	default:
		return Reference{}, fmt.Errorf("unsupported account reference type %T", v)
	}
}

// IsID reports whether the reference is a numeric account id
func (r Reference) IsID() bool { return r.isID }

// String renders the reference exactly as the caller supplied it
func (r Reference) String() string {
	if r.isID {
		return strconv.FormatInt(r.id, 10)
	}
	return r.text
}

// Resolve derives the canonical handle of a reference. It is pure and total:
//  1. numeric ids render as decimal strings
//  2. URLs yield their first path segment
//  3. anything else loses one leading "@"
func Resolve(r Reference) Handle {
	if r.isID {
		return Handle(strconv.FormatInt(r.id, 10))
	}
	if hasScheme(r.text) {
		if u, err := url.Parse(r.text); err == nil {
			path := strings.TrimPrefix(u.Path, "/")
			path = strings.TrimSuffix(path, "/")
			first, _, _ := strings.Cut(path, "/")
			return Handle(first)
		}
	}
	return Handle(strings.TrimPrefix(r.text, "@"))
}

// ResolveAll resolves every reference in order
func ResolveAll(refs []Reference) []Handle {
	handles := make([]Handle, len(refs))
	for i, r := range refs {
		handles[i] = Resolve(r)
	}
	return handles
}

// hasScheme reports whether s starts with "<scheme>://", scheme being
// RFC 3986 letters, digits, "+", "-" or "." after a leading letter.
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
