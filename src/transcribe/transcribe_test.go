package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtube.com/shorts/abcdefghijk", "abcdefghijk"},
		{"https://youtu.be/A1b2C3d4E5_?t=10", "A1b2C3d4E5_"},
		{"http://www.youtube.com/embed/-_-_-_-_-_-", "-_-_-_-_-_-"},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "https://vimeo.com/12345", "https://youtu.be/short"} {
		_, err := ExtractVideoID(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}

func TestParseVideoInfo(t *testing.T) {
	info := parseVideoInfo("My Video\n20240101\n615\nNA\n")
	assert.Equal(t, "My Video", info.Title)
	assert.Equal(t, "20240101", info.UploadDate)
	assert.Equal(t, "615", info.Duration)
	assert.Equal(t, "Unknown Views", info.ViewCount)
	assert.Equal(t, "Unknown Likes", info.LikeCount)
}

type fakeTranscriber struct {
	text string
	err  error
	path string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.path = path
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return f.text, f.err
}

// fakeYtDlp answers --print lookups and writes the mp3 named by -o.
func fakeYtDlp(t *testing.T, calls *[][]string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, args)
		if args[0] == "--skip-download" {
			return []byte("Title\n20230102\n60\n10\n2\n"), nil
		}
		for i, a := range args {
			if a == "-o" {
				out := strings.Replace(args[i+1], "%(ext)s", "mp3", 1)
				require.NoError(t, os.WriteFile(out, []byte("ID3"), 0o600))
			}
		}
		return nil, nil
	}
}

func TestTranscribeVideo_CleansUp(t *testing.T) {
	tmp := t.TempDir()
	var calls [][]string
	tr := &fakeTranscriber{text: "hello world"}
	svc := NewService(Config{TempDir: tmp, FFmpegLocation: "/usr/bin/ffmpeg"}, tr, fakeYtDlp(t, &calls), nil)

	v, err := svc.TranscribeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", v.Transcript)
	assert.Equal(t, "Title", v.Info.Title)
	assert.Equal(t, "dQw4w9WgXcQ.mp3", filepath.Base(tr.path))
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "--ffmpeg-location")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTranscribeVideo_CleansUpOnFailure(t *testing.T) {
	tmp := t.TempDir()
	var calls [][]string
	tr := &fakeTranscriber{err: errors.New("whisper down")}
	svc := NewService(Config{TempDir: tmp}, tr, fakeYtDlp(t, &calls), nil)

	_, err := svc.TranscribeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	entries, _ := os.ReadDir(tmp)
	assert.Empty(t, entries)

	failing := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("yt-dlp missing") }
	svc = NewService(Config{TempDir: tmp}, tr, failing, nil)
	v, err := svc.TranscribeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, "YouTube Video", v.Info.Title)
	entries, _ = os.ReadDir(tmp)
	assert.Empty(t, entries)
}

func TestTranscribeVideo_InvalidURL(t *testing.T) {
	svc := NewService(Config{}, &fakeTranscriber{}, nil, nil)
	_, err := svc.TranscribeVideo(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestTranscribeUpload(t *testing.T) {
	tmp := t.TempDir()
	tr := &fakeTranscriber{text: "recorded"}
	svc := NewService(Config{TempDir: tmp}, tr, nil, nil)

	text, err := svc.TranscribeUpload(context.Background(), strings.NewReader("RIFF"), "clip.m4a")
	require.NoError(t, err)
	assert.Equal(t, "recorded", text)
	assert.Equal(t, ".m4a", filepath.Ext(tr.path))
	entries, _ := os.ReadDir(tmp)
	assert.Empty(t, entries)
}

func TestWhisper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" transcribed text "}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))

	w, err := NewWhisper("sk", "", srv.URL, 5*time.Second)
	require.NoError(t, err)
	text, err := w.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "transcribed text", text)

	_, err = NewWhisper("", "", "", 0)
	assert.Error(t, err)
}
