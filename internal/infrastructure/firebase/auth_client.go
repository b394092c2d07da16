package firebase

import (
	"context"
	"fmt"
	"os"

	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/preetambaheti/Farmunity-marketplace/pkg/config"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// TokenVerifier turns a bearer token into an authenticated user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// ClientOption picks service account credentials: inline JSON first
// (production), then a file path (local development), then ambient
// application default credentials.
func ClientOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)), nil
	}
	if path := cfg.FirebaseServiceAccountPath; path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account file does not exist: %s", path)
		}
		logger.Info("Using Firebase service account from file: %s", path)
		return option.WithCredentialsFile(path), nil
	}
	return nil, nil
}

// NewApp initialises the Firebase app shared by Auth and Firestore.
func NewApp(ctx context.Context, cfg *config.Config) (*fbapp.App, []option.ClientOption, error) {
	var opts []option.ClientOption
	opt, err := ClientOption(cfg)
	if err != nil {
		return nil, nil, err
	}
	if opt != nil {
		opts = append(opts, opt)
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize firebase: %w", err)
	}
	return app, opts, nil
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

var _ TokenVerifier = (*FirebaseAuthClient)(nil)

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}
