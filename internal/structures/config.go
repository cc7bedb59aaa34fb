package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// UpstreamConfig describes how the platform API is reached.
type UpstreamConfig struct {
	BaseURL             string        `yaml:"baseURL" validate:"required"`
	PushURL             string        `yaml:"pushURL" validate:"required"`
	UserAgent           string        `yaml:"userAgent"`
	Timeout             time.Duration `yaml:"timeout" validate:"required|min:1"`
	RatePerSecond       float64       `yaml:"ratePerSecond"`
	Burst               int           `yaml:"burst"`
	BreakerMinRequests  uint32        `yaml:"breakerMinRequests"`
	BreakerFailureRatio float64       `yaml:"breakerFailureRatio"`
	BreakerTimeout      time.Duration `yaml:"breakerTimeout"`
}

// EndpointsConfig holds URL templates relative to UpstreamConfig.BaseURL.
// Recognised placeholders: {event_id}, {event_url_key}, {room_id}, {page}, {status}.
type EndpointsConfig struct {
	RankingCandidates    []string `yaml:"rankingCandidates" validate:"required"`
	ParticipantCount     string   `yaml:"participantCount" validate:"required"`
	ParticipantFallbacks []string `yaml:"participantFallbacks"`
	BlockRanking         string   `yaml:"blockRanking" validate:"required"`
	BlockRoster          string   `yaml:"blockRoster" validate:"required"`
	RoomStanding         string   `yaml:"roomStanding" validate:"required"`
	CommentLog           string   `yaml:"commentLog" validate:"required"`
	GiftLog              string   `yaml:"giftLog" validate:"required"`
	GiftCatalog          string   `yaml:"giftCatalog" validate:"required"`
	LiveRooms            string   `yaml:"liveRooms" validate:"required"`
	EventSearch          string   `yaml:"eventSearch" validate:"required"`
}

// AliasConfig lists field paths tried in order; dotted paths descend into nested objects.
type AliasConfig struct {
	RoomID []string `yaml:"roomID" validate:"required"`
	Name   []string `yaml:"name"`
	Point  []string `yaml:"point"`
	Rank   []string `yaml:"rank"`
}

type RankingConfig struct {
	MaxPages      int           `yaml:"maxPages" validate:"required|min:1"`
	CountMaxPages int           `yaml:"countMaxPages" validate:"required|min:1"`
	LiveTTL       time.Duration `yaml:"liveTTL" validate:"required|min:1"`
	EndedTTL      time.Duration `yaml:"endedTTL" validate:"required|min:1"`
	EventPages    int           `yaml:"eventPages"`
}

type TrackingConfig struct {
	Interval         time.Duration `yaml:"interval" validate:"required|min:1"`
	QueueSize        int           `yaml:"queueSize" validate:"required|min:1"`
	MaxSessions      int           `yaml:"maxSessions"`
	ReconnectInitial time.Duration `yaml:"reconnectInitial"`
	ReconnectMax     time.Duration `yaml:"reconnectMax"`
	PingInterval     time.Duration `yaml:"pingInterval"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Aliases   AliasConfig     `yaml:"aliases"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Tracking  TrackingConfig  `yaml:"tracking"`
}
