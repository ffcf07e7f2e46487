package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Schema describes the JSON fields an endpoint accepts for an entity and
// whether each field is required. Decoding into the typed struct is the
// projection step; fields outside the struct are silently dropped. The
// schema's job is to make a missing required field an explicit, named
// validation failure instead of a zero value reaching the store.
type Schema map[string]bool

var (
	UserSchema = Schema{
		"name":     true,
		"email":    true,
		"password": true,
		"admin":    true,
	}

	PlaylistSchema = Schema{
		"name":        true,
		"description": true,
		"ownerid":     true,
	}

	// Song length and path are server-owned (derived from the uploaded
	// file), so the client-facing schema covers only name and ownerid.
	SongSchema = Schema{
		"name":    true,
		"ownerid": true,
	}

	ReviewSchema = Schema{
		"userid":     true,
		"playlistid": true,
		"stars":      true,
		"review":     false,
	}
)

// MissingFields returns the required fields absent from (or JSON null in)
// the raw payload, sorted for stable error messages.
func (s Schema) MissingFields(payload map[string]json.RawMessage) []string {
	var missing []string
	for field, required := range s {
		if !required {
			continue
		}
		raw, ok := payload[field]
		if !ok || isJSONNull(raw) {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// Matches reports whether every required field is present and non-null.
func (s Schema) Matches(payload map[string]json.RawMessage) bool {
	return len(s.MissingFields(payload)) == 0
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
