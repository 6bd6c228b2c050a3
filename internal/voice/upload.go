package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/qiniu/go-sdk/v7/auth"
	"github.com/qiniu/go-sdk/v7/storage"
)

// Uploader pushes recorded audio files to object storage so the voice API
// can fetch them by URL.
type Uploader struct {
	accessKey string
	secretKey string
	bucket    string
	domain    string
}

// NewUploaderFromEnv builds an uploader from QINIU_* environment variables.
func NewUploaderFromEnv() *Uploader {
	bucket := os.Getenv("QINIU_BUCKET")
	if bucket == "" {
		bucket = "neurotrain-audio"
	}
	domain := os.Getenv("QINIU_DOMAIN")
	if domain == "" {
		domain = bucket + ".example.com"
	}
	return &Uploader{
		accessKey: os.Getenv("QINIU_ACCESS_KEY"),
		secretKey: os.Getenv("QINIU_SECRET_KEY"),
		bucket:    bucket,
		domain:    domain,
	}
}

// Configured reports whether storage credentials are present.
func (u *Uploader) Configured() bool {
	return u.accessKey != "" && u.secretKey != ""
}

// UploadAudio uploads a local audio file and returns its public URL.
func (u *Uploader) UploadAudio(ctx context.Context, localPath string) (string, error) {
	if !u.Configured() {
		return "", fmt.Errorf("storage credentials not configured: set QINIU_ACCESS_KEY and QINIU_SECRET_KEY")
	}

	mac := auth.New(u.accessKey, u.secretKey)
	putPolicy := storage.PutPolicy{Scope: u.bucket}
	upToken := putPolicy.UploadToken(mac)

	cfg := storage.Config{
		UseHTTPS:      true,
		UseCdnDomains: false,
	}

	formUploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}
	key := fmt.Sprintf("asr/%d_%s", time.Now().Unix(), filepath.Base(localPath))

	if err := formUploader.PutFile(ctx, &ret, upToken, key, localPath, nil); err != nil {
		log.Printf("Failed to upload file to storage: %v", err)
		return "", fmt.Errorf("failed to upload audio file: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s/%s", u.domain, key)
	log.Printf("Audio uploaded successfully: %s", publicURL)
	return publicURL, nil
}
