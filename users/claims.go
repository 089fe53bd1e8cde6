package users

// Claim names read from the userinfo response.
const (
	ClaimSubject           = "sub"
	ClaimEmail             = "email"
	ClaimName              = "name"
	ClaimPreferredUsername = "preferred_username"
	ClaimPicture           = "picture"
)

// Claims is the string-valued view of an identity provider claim set.
// Claims whose value is not a JSON string are dropped and read as missing.
type Claims map[string]string

// ClaimsFromRaw keeps the string-valued entries of a decoded JSON object.
func ClaimsFromRaw(raw map[string]any) Claims {
	claims := make(Claims, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			claims[k] = s
		}
	}
	return claims
}

// Get returns the claim value and whether it was present.
func (c Claims) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}

// GetOrDefault returns the claim value or defaultValue when the claim is missing.
func (c Claims) GetOrDefault(name, defaultValue string) string {
	if v, ok := c[name]; ok {
		return v
	}
	return defaultValue
}
