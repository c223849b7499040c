package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"patient-activation/config"
	"patient-activation/utilities"
)

// InitializeFirebase builds the Firebase app from the service account file in cfg.
func InitializeFirebase(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is not set")
	}
	opt := option.WithCredentialsFile(cfg.CredentialsPath)

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, appCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase: %w", err)
	}

	utilities.LogInfo("firebase initialized")
	return app, nil
}

// NewFirestoreClient returns a Firestore client for the configured project.
func NewFirestoreClient(ctx context.Context, cfg config.FirebaseConfig) (*firestore.Client, error) {
	app, err := InitializeFirebase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firestore client: %w", err)
	}
	return client, nil
}
