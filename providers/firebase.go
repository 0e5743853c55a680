package providers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase phone-auth ID tokens
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initialises the Admin SDK. An empty credentialsFile
// falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// VerifyIdentityToken returns the phone_number claim of a valid token
func (v *FirebaseVerifier) VerifyIdentityToken(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityRejected, err)
	}
	phone, _ := token.Claims["phone_number"].(string)
	if phone == "" {
		return "", fmt.Errorf("%w: token has no phone number", ErrIdentityRejected)
	}
	return phone, nil
}
