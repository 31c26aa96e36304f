package config

import "time"

type Search struct {
	SerperKey     string
	FactCheckKey  string
	Results       int
	EvidenceLimit int
	QPS           float64
	// CacheTTL is how long search results are reused; zero disables caching.
	CacheTTL time.Duration
}

type Pipeline struct {
	Workers           int
	CallTimeout       time.Duration
	RetryAttempts     int
	AdditionalContext bool
	ShortTextWords    int
}

type Media struct {
	WhisperModel   string
	YtDlpPath      string
	FFmpegLocation string
	TempDir        string
}

// Discord is optional; the bot starts only when both fields are set.
type Discord struct {
	Token   string
	GuildID string
}

func (d Discord) Enabled() bool { return d.Token != "" && d.GuildID != "" }

func loadSearch(s *source) Search {
	return Search{
		SerperKey:     s.str("SERPER_API_KEY", ""),
		FactCheckKey:  s.str("GOOGLE_FACT_CHECK_API_KEY", ""),
		Results:       s.integer("SEARCH_RESULTS", 8),
		EvidenceLimit: s.integer("EVIDENCE_LIMIT", 5),
		QPS:           s.float("SEARCH_QPS", 5),
		CacheTTL:      s.duration("SEARCH_CACHE_TTL", 6*time.Hour),
	}
}

func loadPipeline(s *source) Pipeline {
	return Pipeline{
		Workers:           clamp(s.integer("VERIFY_WORKERS", 4), 1, 8),
		CallTimeout:       s.duration("CALL_TIMEOUT", 30*time.Second),
		RetryAttempts:     s.integer("RETRY_ATTEMPTS", 3),
		AdditionalContext: s.boolean("ADDITIONAL_CONTEXT", true),
		ShortTextWords:    s.integer("SHORT_TEXT_WORDS", 20),
	}
}

func loadMedia(s *source) Media {
	return Media{
		WhisperModel:   s.str("WHISPER_MODEL", "whisper-1"),
		YtDlpPath:      s.str("YTDLP_PATH", "yt-dlp"),
		FFmpegLocation: s.str("FFMPEG_LOCATION", ""),
		TempDir:        s.str("TEMP_DIR", ""),
	}
}

func loadDiscord(s *source) Discord {
	return Discord{
		Token:   s.str("DISCORD_TOKEN", ""),
		GuildID: s.str("GUILD_ID", ""),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
