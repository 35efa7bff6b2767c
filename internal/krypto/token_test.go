package krypto_test

import (
	"fmt"
	"testing"

	"github.com/LSkevi/PieTracker/internal/krypto"
)

func Test_Token_GenerateParse(t *testing.T) {
	t.Run("ok, roundtrip via string", func(t *testing.T) {
		tok, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		got, err := krypto.ParseToken(tok.String())
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}

		if got != tok {
			t.Errorf("parsed token does not equal original")
		}
	})

	t.Run("ok, tokens are unique", func(t *testing.T) {
		tok1, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		tok2, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		if tok1 == tok2 {
			t.Errorf("expected unique tokens, got equal ones")
		}
	})

	failParsing := map[string]string{
		"empty":     "",
		"too short": "abcdef",
		"not hex":   "zz5ad15eac652dc59f7170a7332bf49b8469be1fdb9c28bb655ad15eac652dc5",
	}

	for name, raw := range failParsing {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := krypto.ParseToken(raw)
			if err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func Test_Token_PreventExposure(t *testing.T) {
	tok, err := krypto.GenerateToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	logged := tok.LogValue().String()
	if logged != krypto.SecretMarker {
		t.Errorf("wanted\n%s\ngot\n%s\n", krypto.SecretMarker, logged)
	}

	_ = fmt.Sprintf("%v", tok) // must not panic
}
