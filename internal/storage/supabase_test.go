package storage

import (
	"errors"
	"testing"

	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
)

type fakeUploader struct {
	keys     []string
	err      error
	failKeys map[string]bool
}

func (f *fakeUploader) Upload(key, _ string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.failKeys[key] {
		return errors.New("upload rejected")
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestUploadEvidence_KeysUnderSessionPrefix(t *testing.T) {
	up := &fakeUploader{}
	art := recording.Artifact{
		Video:    []byte("v"),
		MimeType: "video/webm;codecs=vp9,opus",
		Screenshots: []recording.Screenshot{
			{Data: []byte("a")}, {Data: []byte("b")},
		},
	}
	UploadEvidence(up, "sess-1", art)

	want := []string{"sess-1/recording.webm", "sess-1/screenshots/000.jpg", "sess-1/screenshots/001.jpg"}
	if len(up.keys) != len(want) {
		t.Fatalf("uploaded keys: %v", up.keys)
	}
	for i, k := range want {
		if up.keys[i] != k {
			t.Fatalf("key %d = %q, want %q", i, up.keys[i], k)
		}
	}
}

func TestUploadEvidence_Mp4Extension(t *testing.T) {
	up := &fakeUploader{}
	UploadEvidence(up, "s", recording.Artifact{Video: []byte("v"), MimeType: "video/mp4"})
	if up.keys[0] != "s/recording.mp4" {
		t.Fatalf("key = %q", up.keys[0])
	}
}

func TestUploadEvidence_BestEffort(t *testing.T) {
	// Nil uploader and failing uploader are both non-fatal.
	UploadEvidence(nil, "s", recording.Artifact{Video: []byte("v")})
	UploadEvidence(&fakeUploader{err: errors.New("bucket gone")}, "s", recording.Artifact{Video: []byte("v")})
}

func TestUploadEvidence_ScreenshotFailureSkipsNotAborts(t *testing.T) {
	up := &fakeUploader{failKeys: map[string]bool{"s/screenshots/001.jpg": true}}
	art := recording.Artifact{
		Screenshots: []recording.Screenshot{
			{Data: []byte("a")}, {Data: []byte("b")}, {Data: []byte("c")},
		},
	}
	UploadEvidence(up, "s", art)

	want := []string{"s/screenshots/000.jpg", "s/screenshots/002.jpg"}
	if len(up.keys) != len(want) {
		t.Fatalf("uploaded keys: %v", up.keys)
	}
	for i, k := range want {
		if up.keys[i] != k {
			t.Fatalf("key %d = %q, want %q", i, up.keys[i], k)
		}
	}
}
