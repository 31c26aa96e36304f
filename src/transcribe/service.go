// Package transcribe turns YouTube videos and uploaded recordings into text.
// Intermediate audio always lives in a per-call temporary directory that is
// removed on every exit path.
package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Config locates the external tools. An empty TempDir means os.TempDir().
type Config struct {
	YtDlpPath       string
	FFmpegLocation  string
	TempDir         string
	InfoTimeout     time.Duration
	DownloadTimeout time.Duration
}

type Service struct {
	cfg         Config
	run         Runner
	transcriber Transcriber
	log         *zap.Logger
}

// NewService builds a Service. A nil run uses ExecRunner.
func NewService(cfg Config, transcriber Transcriber, run Runner, log *zap.Logger) *Service {
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	if cfg.InfoTimeout <= 0 {
		cfg.InfoTimeout = 30 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 10 * time.Minute
	}
	if run == nil {
		run = ExecRunner
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, run: run, transcriber: transcriber, log: log}
}

// Video is a transcribed YouTube video.
type Video struct {
	ID         string
	Info       VideoInfo
	Transcript string
}

// Info fetches video metadata. Failures yield placeholder values.
func (s *Service) Info(ctx context.Context, id string) VideoInfo {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.InfoTimeout)
	defer cancel()

	args := []string{"--skip-download"}
	for _, f := range infoFields {
		args = append(args, "--print", f)
	}
	args = append(args, watchURL(id))

	out, err := s.run(ctx, s.cfg.YtDlpPath, args...)
	if err != nil {
		s.log.Warn("video info lookup failed", zap.String("video_id", id), zap.Error(err))
		return defaultVideoInfo()
	}
	return parseVideoInfo(string(out))
}

// TranscribeVideo downloads the audio track of url and transcribes it.
func (s *Service) TranscribeVideo(ctx context.Context, url string) (Video, error) {
	id, err := ExtractVideoID(url)
	if err != nil {
		return Video{}, err
	}
	if s.transcriber == nil {
		return Video{}, fmt.Errorf("transcribe: no transcription backend configured")
	}
	v := Video{ID: id, Info: s.Info(ctx, id)}

	dir, err := s.workDir()
	if err != nil {
		return v, err
	}
	defer s.cleanup(dir)

	audio, err := s.download(ctx, id, dir)
	if err != nil {
		return v, err
	}
	v.Transcript, err = s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return v, err
	}
	s.log.Info("video transcribed", zap.String("video_id", id), zap.Int("chars", len(v.Transcript)))
	return v, nil
}

// TranscribeUpload stores an uploaded recording and transcribes it.
func (s *Service) TranscribeUpload(ctx context.Context, r io.Reader, filename string) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("transcribe: no transcription backend configured")
	}
	dir, err := s.workDir()
	if err != nil {
		return "", err
	}
	defer s.cleanup(dir)

	ext := filepath.Ext(filepath.Base(filename))
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(dir, "recording"+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("transcribe: create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("transcribe: store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("transcribe: store upload: %w", err)
	}
	return s.transcriber.Transcribe(ctx, path)
}

func (s *Service) download(ctx context.Context, id, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownloadTimeout)
	defer cancel()

	args := []string{"-x", "--audio-format", "mp3"}
	if s.cfg.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", s.cfg.FFmpegLocation)
	}
	args = append(args, "-o", filepath.Join(dir, id+".%(ext)s"), watchURL(id))

	if _, err := s.run(ctx, s.cfg.YtDlpPath, args...); err != nil {
		return "", fmt.Errorf("transcribe: download audio: %w", err)
	}
	path := filepath.Join(dir, id+".mp3")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("transcribe: download audio: %w", err)
	}
	return path, nil
}

func (s *Service) workDir() (string, error) {
	dir, err := os.MkdirTemp(s.cfg.TempDir, "sentinel-")
	if err != nil {
		return "", fmt.Errorf("transcribe: temp dir: %w", err)
	}
	return dir, nil
}

func (s *Service) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.log.Warn("temp cleanup failed", zap.String("dir", dir), zap.Error(err))
	}
}
