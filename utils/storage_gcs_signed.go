package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iamcredentials/v1"
	"google.golang.org/api/option"
)

type SignedDownload struct {
	DownloadURL string    `json:"downloadUrl"`
	ObjectKey   string    `json:"objectKey"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type serviceAccountJSON struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// SignDownload builds a V4 signed GET URL for an object in the vendor-file
// bucket. Signing uses a service-account key from env when present, falling
// back to the IAM credentials SignBlob API (Cloud Run service account).
func SignDownload(ctx context.Context, objectKey string, expires time.Duration) (*SignedDownload, error) {
	if GetStorageProvider() != StorageProviderGCS {
		return nil, fmt.Errorf("storage provider %q is not supported for signed downloads", GetStorageProvider())
	}

	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	}

	accessID, privateKey, ok, err := loadSignerFromEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		opts.GoogleAccessID = accessID
		opts.PrivateKey = privateKey
	} else {
		email, signBytes, err := iamSigner(ctx)
		if err != nil {
			return nil, err
		}
		opts.GoogleAccessID = email
		opts.SignBytes = signBytes
	}

	signedURL, err := storage.SignedURL(bucket, objectKey, opts)
	if err != nil {
		return nil, err
	}

	return &SignedDownload{
		DownloadURL: signedURL,
		ObjectKey:   objectKey,
		ExpiresAt:   opts.Expires,
	}, nil
}

// loadSignerFromEnv reads an explicit service-account key out of
// GCS_CREDENTIALS_JSON (raw or base64 JSON).
func loadSignerFromEnv() (accessID string, privateKey []byte, ok bool, err error) {
	raw := strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_JSON"))
	if raw == "" {
		return "", nil, false, nil
	}
	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, derr := base64.StdEncoding.DecodeString(raw)
		if derr != nil {
			return "", nil, false, fmt.Errorf("GCS_CREDENTIALS_JSON is neither JSON nor base64: %v", derr)
		}
		data = decoded
	}
	var sa serviceAccountJSON
	if err := json.Unmarshal(data, &sa); err != nil {
		return "", nil, false, err
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return "", nil, false, errors.New("GCS_CREDENTIALS_JSON missing client_email/private_key")
	}
	return sa.ClientEmail, []byte(sa.PrivateKey), true, nil
}

// iamSigner signs via the IAM credentials API using the ambient service
// account (no private key on disk).
func iamSigner(ctx context.Context) (email string, signBytes func([]byte) ([]byte, error), err error) {
	creds, err := google.FindDefaultCredentials(ctx, iamcredentials.CloudPlatformScope)
	if err != nil {
		return "", nil, err
	}

	email = strings.TrimSpace(os.Getenv("GCS_SIGNER_SERVICE_ACCOUNT"))
	if email == "" && len(creds.JSON) > 0 {
		var sa serviceAccountJSON
		if jerr := json.Unmarshal(creds.JSON, &sa); jerr == nil {
			email = sa.ClientEmail
		}
	}
	if email == "" {
		return "", nil, errors.New("cannot determine signer service account; set GCS_SIGNER_SERVICE_ACCOUNT")
	}

	svc, err := iamcredentials.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return "", nil, err
	}

	name := "projects/-/serviceAccounts/" + email
	signBytes = func(b []byte) ([]byte, error) {
		resp, err := svc.Projects.ServiceAccounts.SignBlob(name, &iamcredentials.SignBlobRequest{
			Payload: base64.StdEncoding.EncodeToString(b),
		}).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(resp.SignedBlob)
	}
	return email, signBytes, nil
}
