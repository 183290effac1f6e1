// Package payment implements the Razorpay and Cashfree gateways.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"storefront/internal/errors"
)

func hmacSHA256(secret string, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	for _, part := range parts {
		mac.Write(part)
	}

	return mac.Sum(nil)
}

// verifyHex compares a lowercase hex signature in constant time.
func verifyHex(secret, signature string, parts ...[]byte) bool {
	given, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(given, hmacSHA256(secret, parts...))
}

func verifyBase64(secret, signature string, parts ...[]byte) bool {
	given, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(given, hmacSHA256(secret, parts...))
}

// callWithContext runs a blocking SDK call that does not accept a context and
// gives up when ctx ends first. The call itself keeps running in the background.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T

		return zero, errors.WithStack(ctx.Err())
	}
}
