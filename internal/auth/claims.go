package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tidwall/gjson"
)

// ErrMalformedToken is returned when an access token cannot be decoded.
var ErrMalformedToken = errors.New("malformed access token")

// Claims are the fields hrdesk reads from the access token. The signature
// is not verified; the backend does that on every call.
type Claims struct {
	Subject   string
	TenantID  string
	Role      string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes token. tenantPath and rolePath are gjson paths into
// the claim set, so nested claims such as "realm_access.roles.0" work.
func ParseClaims(token, tenantPath, rolePath string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	raw, err := json.Marshal(mc)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	doc := gjson.ParseBytes(raw)

	c := Claims{
		Subject:  first(doc, "sub", "userId", "user_id", "id"),
		TenantID: first(doc, tenantPath, "tenant_id", "tenantId", "tenant"),
		Role:     roleOf(doc.Get(rolePath)),
		Email:    first(doc, "email", "preferred_username"),
		Name:     first(doc, "name", "fullName"),
	}
	if c.Role == "" {
		c.Role = roleOf(doc.Get("roles"))
	}
	if exp := doc.Get("exp"); exp.Type == gjson.Number {
		c.ExpiresAt = time.Unix(exp.Int(), 0).UTC()
	}
	return c, nil
}

func first(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if v := doc.Get(p); v.Exists() && v.Type != gjson.Null && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// roleOf accepts "admin", ["admin"], {"name":"admin"} or [{"name":"admin"}].
func roleOf(v gjson.Result) string {
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if r := roleOf(item); r != "" {
				return r
			}
		}
		return ""
	case v.IsObject():
		return v.Get("name").String()
	default:
		return v.String()
	}
}
