package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned for URLs that carry no YouTube video id.
var ErrInvalidURL = errors.New("transcribe: invalid YouTube URL")

var videoIDRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:watch\?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the 11-character id of a watch, shorts, embed or youtu.be URL.
func ExtractVideoID(url string) (string, error) {
	m := videoIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

type VideoInfo struct {
	Title      string `json:"title"`
	UploadDate string `json:"upload_date"`
	Duration   string `json:"duration"`
	ViewCount  string `json:"view_count"`
	LikeCount  string `json:"like_count"`
}

func defaultVideoInfo() VideoInfo {
	return VideoInfo{
		Title:      "YouTube Video",
		UploadDate: "Unknown Date",
		Duration:   "Unknown Duration",
		ViewCount:  "Unknown Views",
		LikeCount:  "Unknown Likes",
	}
}

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

var infoFields = []string{"title", "upload_date", "duration", "view_count", "like_count"}

// parseVideoInfo maps yt-dlp --print lines onto VideoInfo, keeping defaults for
// missing or "NA" lines.
func parseVideoInfo(out string) VideoInfo {
	info := defaultVideoInfo()
	dst := []*string{&info.Title, &info.UploadDate, &info.Duration, &info.ViewCount, &info.LikeCount}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		if i >= len(dst) {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "NA" {
			continue
		}
		*dst[i] = line
	}
	return info
}
