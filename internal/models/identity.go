package models

import "strings"

// GroupsClaim is the claim under which Cognito lists the caller's groups.
const GroupsClaim = "cognito:groups"

// Identity is the verified caller identity handed to every operation.
// Its JSON shape matches the AppSync resolver event's identity block.
type Identity struct {
	Sub      string                 `json:"sub"`
	Username string                 `json:"username,omitempty"`
	Claims   map[string]interface{} `json:"claims,omitempty"`
}

// IdentityFromClaims builds an Identity from a verified token's claims map.
func IdentityFromClaims(claims map[string]interface{}) *Identity {
	id := &Identity{Claims: claims}
	id.Sub, _ = claims["sub"].(string)
	if u, ok := claims["cognito:username"].(string); ok {
		id.Username = u
	} else if u, ok := claims["username"].(string); ok {
		id.Username = u
	}
	return id
}

// Claim returns a string claim, or "" when missing or not a string.
func (i *Identity) Claim(name string) string {
	if i == nil || i.Claims == nil {
		return ""
	}
	s, _ := i.Claims[name].(string)
	return s
}

// Groups returns the caller's group memberships in claim order.
// Tokens carry a JSON array; some transports flatten it into a
// comma or space separated string.
func (i *Identity) Groups() []string {
	if i == nil || i.Claims == nil {
		return nil
	}
	switch v := i.Claims[GroupsClaim].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, g := range v {
			if s, ok := g.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return nil
}

// HasGroup reports whether the caller belongs to the named group.
func (i *Identity) HasGroup(group string) bool {
	for _, g := range i.Groups() {
		if g == group {
			return true
		}
	}
	return false
}
