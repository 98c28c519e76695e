package jwthandling

import (
	"testing"
	"time"
)

func TestRespondentToken(t *testing.T) {
	secretKey := "test-signing-key"

	t.Run("generate and validate", func(t *testing.T) {
		tokenString, err := GenerateNewRespondentToken(time.Minute, "resp-1", "testinstance", []string{"intake"}, nil, secretKey)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		claims, valid, err := ValidateRespondentToken(tokenString, secretKey)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !valid {
			t.Error("token should be valid")
		}
		if claims.Subject != "resp-1" {
			t.Errorf("unexpected subject: %s", claims.Subject)
		}
		if claims.InstanceID != "testinstance" {
			t.Errorf("unexpected instance ID: %s", claims.InstanceID)
		}
		if len(claims.FormKeys) != 1 || claims.FormKeys[0] != "intake" {
			t.Errorf("unexpected form keys: %v", claims.FormKeys)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		tokenString, err := GenerateNewRespondentToken(time.Minute, "resp-1", "testinstance", nil, nil, secretKey)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		_, valid, err := ValidateRespondentToken(tokenString, "wrong-key")
		if err == nil {
			t.Error("should return an error")
		}
		if valid {
			t.Error("token should not be valid")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString, err := GenerateNewRespondentToken(-time.Minute, "resp-1", "testinstance", nil, nil, secretKey)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		_, valid, err := ValidateRespondentToken(tokenString, secretKey)
		if err == nil {
			t.Error("should return an error")
		}
		if valid {
			t.Error("token should not be valid")
		}
	})
}
