package users

// Profile is the authenticated identity, mapped from the identity provider's userinfo claims.
// Every field is best effort: a missing claim maps to the empty string.
type Profile struct {
	Subject     string `json:"uid"`     // "sub" claim
	Email       string `json:"email"`   // "email" claim
	DisplayName string `json:"name"`    // "name" claim, falling back to "preferred_username"
	PictureURL  string `json:"picture"` // "picture" claim
}

// ProfileFromClaims maps userinfo claims onto a Profile. It never fails.
func ProfileFromClaims(claims Claims) Profile {
	displayName, ok := claims.Get(ClaimName)
	if !ok {
		displayName = claims.GetOrDefault(ClaimPreferredUsername, "")
	}
	return Profile{
		Subject:     claims.GetOrDefault(ClaimSubject, ""),
		Email:       claims.GetOrDefault(ClaimEmail, ""),
		DisplayName: displayName,
		PictureURL:  claims.GetOrDefault(ClaimPicture, ""),
	}
}
