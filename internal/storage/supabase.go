package storage

import (
	"bytes"
	"fmt"
	"log"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
)

// Uploader persists evidence artifacts. Best effort everywhere: a failed
// upload is logged, never fatal to the session or the evaluation.
type Uploader interface {
	Upload(key, contentType string, data []byte) error
}

type Config struct {
	URL            string
	ServiceRoleKey string
	Bucket         string
}

// Store writes session evidence into a Supabase storage bucket.
type Store struct {
	client *supabase.Client
	bucket string
}

func New(cfg Config) (*Store, error) {
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Upload(key, contentType string, data []byte) error {
	opts := storage_go.FileOptions{ContentType: &contentType}
	_, err := s.client.Storage.UploadFile(s.bucket, key, bytes.NewReader(data), opts)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

// UploadEvidence pushes the finalized video and every screenshot under the
// session's prefix. up may be nil (no storage configured); failures are
// logged and skipped so the evaluation still runs on in-memory evidence.
func UploadEvidence(up Uploader, sessionID string, art recording.Artifact) {
	if up == nil {
		return
	}
	if len(art.Video) > 0 {
		key := fmt.Sprintf("%s/recording%s", sessionID, extensionFor(art.MimeType))
		if err := up.Upload(key, art.MimeType, art.Video); err != nil {
			log.Printf("[%s] video upload failed: %v", sessionID, err)
		}
	}
	for i, shot := range art.Screenshots {
		key := fmt.Sprintf("%s/screenshots/%03d.jpg", sessionID, i)
		if err := up.Upload(key, "image/jpeg", shot.Data); err != nil {
			log.Printf("[%s] screenshot upload failed: %v", sessionID, err)
			continue
		}
	}
}

func extensionFor(mimeType string) string {
	switch {
	case mimeType == "video/mp4":
		return ".mp4"
	default:
		return ".webm"
	}
}
