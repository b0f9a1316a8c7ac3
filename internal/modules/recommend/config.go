package recommend

import "time"

type Config struct {
	DefaultCount            int           `yaml:"default_count" env:"RECOMMEND_DEFAULT_COUNT" validate:"gte=1"`
	MaxCount                int           `yaml:"max_count" env:"RECOMMEND_MAX_COUNT" validate:"gtefield=DefaultCount"`
	CandidateLimit          int           `yaml:"candidate_limit" env:"RECOMMEND_CANDIDATE_LIMIT" validate:"gte=1"`
	RecentWindow            time.Duration `yaml:"recent_window" env:"RECOMMEND_RECENT_WINDOW" validate:"gt=0"`
	LookbackDays            int           `yaml:"lookback_days" env:"RECOMMEND_LOOKBACK_DAYS" validate:"gte=1"`
	HighEngagementThreshold float64       `yaml:"high_engagement_threshold" env:"RECOMMEND_HIGH_ENGAGEMENT" validate:"gte=0,lte=1"`
	PeerLimit               int           `yaml:"peer_limit" env:"RECOMMEND_PEER_LIMIT" validate:"gte=1"`
	PeerCompletionThreshold float64       `yaml:"peer_completion_threshold" env:"RECOMMEND_PEER_COMPLETION" validate:"gte=0,lte=1"`
	CachedScore             float64       `yaml:"cached_score" env:"RECOMMEND_CACHED_SCORE" validate:"gte=0,lte=1"`
	TrendingScore           float64       `yaml:"trending_score" env:"RECOMMEND_TRENDING_SCORE" validate:"gte=0,lte=1"`
	DefaultCategory         string        `yaml:"default_category" env:"RECOMMEND_DEFAULT_CATEGORY" validate:"required"`
	ClampScores             bool          `yaml:"clamp_scores" env:"RECOMMEND_CLAMP_SCORES"`
	TitleMaxChars           int           `yaml:"title_max_chars" env:"RECOMMEND_TITLE_MAX_CHARS" validate:"gte=1"`
	BehaviorTTL             time.Duration `yaml:"behavior_ttl" env:"RECOMMEND_BEHAVIOR_TTL" validate:"gt=0"`
	ListTTL                 time.Duration `yaml:"list_ttl" env:"RECOMMEND_LIST_TTL" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		DefaultCount:            10,
		MaxCount:                50,
		CandidateLimit:          50,
		RecentWindow:            7 * 24 * time.Hour,
		LookbackDays:            30,
		HighEngagementThreshold: 0.8,
		PeerLimit:               10,
		PeerCompletionThreshold: 0.7,
		CachedScore:             0.8,
		TrendingScore:           0.5,
		DefaultCategory:         "NBA",
		ClampScores:             true,
		TitleMaxChars:           60,
		BehaviorTTL:             time.Hour,
		ListTTL:                 30 * time.Minute,
	}
}

// count resolves a caller-supplied list size against the configured bounds.
func (c Config) count(requested int) int {
	if requested <= 0 {
		return c.DefaultCount
	}
	if requested > c.MaxCount {
		return c.MaxCount
	}
	return requested
}
