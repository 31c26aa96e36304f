package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/factcheck/report"
	"github.com/stake-plus/sentinel/src/transcribe"
)

const maxUploadBytes = 100 << 20

type Media struct {
	media   Transcriber
	checker Checker
	log     *zap.Logger
}

func NewMedia(media Transcriber, checker Checker, log *zap.Logger) Media {
	return Media{media: media, checker: checker, log: log}
}

type videoInfo struct {
	Title      string  `json:"title"`
	TrustScore float64 `json:"trust_score"`
	UploadDate string  `json:"upload_date"`
	Duration   string  `json:"duration"`
	ViewCount  string  `json:"view_count"`
	LikeCount  string  `json:"like_count"`
}

type videoReport struct {
	*report.Report
	VideoInfo videoInfo `json:"video_info"`
}

// Transcribe handles POST /transcribe: fetch, transcribe and check a YouTube video.
func (h Media) Transcribe(c *gin.Context) {
	var req struct {
		VideoURL string `json:"video_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.VideoURL == "" {
		badRequest(c, "No video URL provided")
		return
	}
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Transcription is not configured"})
		return
	}

	ctx := c.Request.Context()
	video, err := h.media.TranscribeVideo(ctx, req.VideoURL)
	switch {
	case errors.Is(err, transcribe.ErrInvalidURL):
		badRequest(c, "Invalid YouTube URL")
		return
	case err != nil:
		h.log.Warn("video transcription failed", zap.String("url", req.VideoURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to transcribe video"})
		return
	}

	rep, err := h.checker.CheckTranscript(ctx, video.Transcript)
	if err != nil {
		abortCanceled(c, err)
		return
	}
	if rep.Empty() {
		c.JSON(http.StatusOK, report.NewNoClaims(video.Transcript))
		return
	}
	c.JSON(http.StatusOK, videoReport{
		Report: rep,
		VideoInfo: videoInfo{
			Title:      video.Info.Title,
			TrustScore: rep.AnalysisSummary.TrustScore,
			UploadDate: video.Info.UploadDate,
			Duration:   video.Info.Duration,
			ViewCount:  video.Info.ViewCount,
			LikeCount:  video.Info.LikeCount,
		},
	})
}

// TranscribeAudio handles POST /transcribe-audio with a multipart "file".
func (h Media) TranscribeAudio(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part in the request", "success": false})
		return
	}
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file", "success": false})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "success": false})
		return
	}
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Transcription is not configured", "success": false})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload", "success": false})
		return
	}
	defer f.Close()

	text, err := h.media.TranscribeUpload(c.Request.Context(), f, fh.Filename)
	if err != nil {
		h.log.Warn("audio transcription failed", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to transcribe audio", "success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transcript": text})
}
