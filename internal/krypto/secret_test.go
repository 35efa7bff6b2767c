package krypto_test

import (
	"fmt"
	"testing"

	"github.com/LSkevi/PieTracker/internal/krypto"
)

func Test_Secret_PreventExposure(t *testing.T) {
	secret := krypto.NewSecret("super-secret-signing-key")

	assert := func(t *testing.T, s string) {
		t.Helper()
		if s != krypto.SecretMarker {
			t.Errorf("wanted\n%s\ngot\n%s\n", krypto.SecretMarker, s)
		}
	}

	t.Run("ok, fmt", func(t *testing.T) {
		assert(t, fmt.Sprintf("%s", secret)) //nolint:gosimple
		assert(t, fmt.Sprintf("%v", secret))
		assert(t, fmt.Sprintf("%#v", secret))
	})

	t.Run("ok, marshal as text", func(t *testing.T) {
		b, err := secret.MarshalText()
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		assert(t, string(b))
	})

	t.Run("ok, secret value is accessible", func(t *testing.T) {
		if string(secret.SecretValue()) != "super-secret-signing-key" {
			t.Errorf("secret value does not match original")
		}
	})
}
