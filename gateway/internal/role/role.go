// Package role derives a user's functional role from the loosely shaped user
// record returned by the library API.
package role

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	None      Role = ""
	Librarian Role = "librarian"
	Borrower  Role = "borrower"
)

func (r Role) String() string {
	if r == None {
		return "none"
	}
	return string(r)
}

func Parse(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case Librarian:
		return Librarian
	case Borrower:
		return Borrower
	default:
		return None
	}
}

var (
	typeKeys      = []string{"role", "type", "userType", "user_type"}
	borrowerFlags = []string{"isBorrower"}
	adminFlags    = []string{"isAdmin", "isLibrarian"}
)

// Resolve picks exactly one role for a record. Each step checks the borrower
// keyword before the librarian one and the first hit wins. A record carrying
// no hint at all is treated as a librarian; an empty record has no role.
func Resolve(user map[string]any) Role {
	if len(user) == 0 {
		return None
	}
	steps := []func(map[string]any, string) bool{
		byTypeField,
		byRolesCollection,
		byFlag,
		bySerialized,
	}
	for _, step := range steps {
		if step(user, string(Borrower)) {
			return Borrower
		}
		if step(user, string(Librarian)) {
			return Librarian
		}
	}
	return Librarian
}

func IsBorrower(user map[string]any) bool {
	return check(user, string(Borrower))
}

func IsLibrarian(user map[string]any) bool {
	return check(user, string(Librarian))
}

func check(user map[string]any, keyword string) bool {
	if len(user) == 0 {
		return false
	}
	return byTypeField(user, keyword) ||
		byRolesCollection(user, keyword) ||
		byFlag(user, keyword) ||
		bySerialized(user, keyword)
}

func byTypeField(user map[string]any, keyword string) bool {
	for _, key := range typeKeys {
		if v, ok := lookup(user, key); ok {
			if s := normalize(v); s != "" {
				return strings.Contains(s, keyword)
			}
		}
	}
	return false
}

func byRolesCollection(user map[string]any, keyword string) bool {
	v, ok := lookup(user, "roles")
	if !ok {
		return false
	}
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if strings.Contains(normalize(item), keyword) {
			return true
		}
	}
	return false
}

func byFlag(user map[string]any, keyword string) bool {
	flags := adminFlags
	if keyword == string(Borrower) {
		flags = borrowerFlags
	}
	for _, key := range flags {
		if v, ok := lookup(user, key); ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
	}
	return false
}

func bySerialized(user map[string]any, keyword string) bool {
	data, err := json.Marshal(user)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), keyword)
}

// lookup finds key ignoring case, preferring an exact match.
func lookup(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok && v != nil {
		return v, true
	}
	for k, v := range m {
		if v != nil && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// normalize lowers a role value; objects such as {"name": "Borrower"} are unwrapped.
func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case map[string]any:
		for _, key := range []string{"name", "role", "type"} {
			if inner, ok := lookup(t, key); ok {
				return normalize(inner)
			}
		}
		return ""
	case bool:
		return ""
	default:
		return strings.ToLower(fmt.Sprint(t))
	}
}
