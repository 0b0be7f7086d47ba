package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token signs claims with a throwaway HMAC key. Missing exp defaults to one
// hour from now.
func Token(t *testing.T, claims map[string]any) string {
	t.Helper()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	if _, ok := mc["exp"]; !ok {
		mc["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}
