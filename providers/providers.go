// Package providers wraps the third-party services the API depends on:
// phone identity verification, SMS delivery and image hosting.
package providers

import (
	"context"
	"errors"
)

var ErrIdentityRejected = errors.New("identity token rejected")

// IdentityVerifier resolves a client-side identity token to a phone number
type IdentityVerifier interface {
	VerifyIdentityToken(ctx context.Context, token string) (string, error)
}

// SMSSender delivers one-time codes. The bool reports whether the message
// was accepted by the carrier gateway.
type SMSSender interface {
	SendCode(ctx context.Context, phone, code string) (bool, error)
}

// ImageUploader stores an image and returns its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, name string, data []byte) (string, error)
}
