package auth

import "time"

// ClaimSetParams carries the decoded token fields used to build a ClaimSet.
// A nil Permissions slice means the token had no permissions claim.
type ClaimSetParams struct {
	Subject     string
	Issuer      string
	Audience    []string
	ExpiresAt   time.Time
	NotBefore   time.Time
	IssuedAt    time.Time
	Permissions []string
}

// ClaimSet is the verified identity of a caller.
type ClaimSet struct {
	subject     string
	issuer      string
	audience    []string
	expiresAt   time.Time
	notBefore   time.Time
	issuedAt    time.Time
	permissions []string
	hasPerms    bool
}

// NewClaimSet copies p into an immutable ClaimSet.
func NewClaimSet(p ClaimSetParams) ClaimSet {
	cs := ClaimSet{
		subject:   p.Subject,
		issuer:    p.Issuer,
		audience:  cloneStrings(p.Audience),
		expiresAt: p.ExpiresAt,
		notBefore: p.NotBefore,
		issuedAt:  p.IssuedAt,
	}
	if p.Permissions != nil {
		cs.hasPerms = true
		cs.permissions = cloneStrings(p.Permissions)
		if cs.permissions == nil {
			cs.permissions = []string{}
		}
	}
	return cs
}

func (c ClaimSet) Subject() string      { return c.subject }
func (c ClaimSet) Issuer() string       { return c.issuer }
func (c ClaimSet) ExpiresAt() time.Time { return c.expiresAt }
func (c ClaimSet) NotBefore() time.Time { return c.notBefore }
func (c ClaimSet) IssuedAt() time.Time  { return c.issuedAt }

// Audience returns a copy of the audience list.
func (c ClaimSet) Audience() []string {
	return cloneStrings(c.audience)
}

// Permissions returns a copy of the granted permissions.
func (c ClaimSet) Permissions() []string {
	return cloneStrings(c.permissions)
}

// HasPermissionsClaim reports whether the token carried a permissions claim.
func (c ClaimSet) HasPermissionsClaim() bool {
	return c.hasPerms
}

// Grants reports whether p is among the granted permissions.
func (c ClaimSet) Grants(p Permission) bool {
	for _, granted := range c.permissions {
		if granted == string(p) {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
