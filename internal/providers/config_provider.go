package providers

import (
	"fmt"
	"path/filepath"
	"srtrack/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.baseURL", "https://www.showroom-live.com")
	v.SetDefault("upstream.pushURL", "wss://www.showroom-live.com/socket")
	v.SetDefault("upstream.userAgent", "Mozilla/5.0")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.ratePerSecond", 10.0)
	v.SetDefault("upstream.burst", 5)
	v.SetDefault("upstream.breakerMinRequests", 10)
	v.SetDefault("upstream.breakerFailureRatio", 0.6)
	v.SetDefault("upstream.breakerTimeout", time.Minute)

	v.SetDefault("endpoints.rankingCandidates", []string{
		"/api/event/room_list?event_id={event_id}&page={page}",
		"/api/event/{event_url_key}/ranking?page={page}",
	})
	v.SetDefault("endpoints.participantCount", "/api/event/room_list?event_id={event_id}")
	v.SetDefault("endpoints.participantFallbacks", []string{
		"/api/event/{event_url_key}/ranking?page={page}",
		"/api/event/ranking?event_id={event_id}&page={page}",
	})
	v.SetDefault("endpoints.blockRanking", "/api/event/{event_url_key}/ranking?page={page}")
	v.SetDefault("endpoints.blockRoster", "/api/event/room_list?event_id={event_id}")
	v.SetDefault("endpoints.roomStanding", "/api/room/event_and_support?room_id={room_id}")
	v.SetDefault("endpoints.commentLog", "/api/live/comment_log?room_id={room_id}")
	v.SetDefault("endpoints.giftLog", "/api/live/gift_log?room_id={room_id}")
	v.SetDefault("endpoints.giftCatalog", "/api/live/gift_list?room_id={room_id}")
	v.SetDefault("endpoints.liveRooms", "/api/live/onlives")
	v.SetDefault("endpoints.eventSearch", "/api/event/search?status={status}&page={page}")

	v.SetDefault("aliases.roomID", []string{"room_id", "id", "room.room_id", "room.id"})
	v.SetDefault("aliases.name", []string{"room_name", "name", "performer_name", "user_name", "room_title", "room.room_name", "room.name"})
	v.SetDefault("aliases.point", []string{"point", "event_point", "popularity_point", "total_point", "event_entry.event_point", "event_entry.point"})
	v.SetDefault("aliases.rank", []string{"rank", "position", "event_entry.rank"})

	v.SetDefault("ranking.maxPages", 30)
	v.SetDefault("ranking.countMaxPages", 30)
	v.SetDefault("ranking.liveTTL", 5*time.Minute)
	v.SetDefault("ranking.endedTTL", time.Hour)
	v.SetDefault("ranking.eventPages", 10)

	v.SetDefault("tracking.interval", 7*time.Second)
	v.SetDefault("tracking.queueSize", 1024)
	v.SetDefault("tracking.maxSessions", 16)
	v.SetDefault("tracking.reconnectInitial", time.Second)
	v.SetDefault("tracking.reconnectMax", 30*time.Second)
	v.SetDefault("tracking.pingInterval", 30*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "SRT_LOG_LEVEL")
	v.BindEnv("tracking.interval", "SRT_TRACKING_INTERVAL")
	v.BindEnv("cache.enabled", "SRT_CACHE_ENABLED")
	v.BindEnv("cache.size", "SRT_CACHE_SIZE")
	v.BindEnv("upstream.baseURL", "SRT_UPSTREAM_URL")
	v.BindEnv("upstream.pushURL", "SRT_PUSH_URL")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SrTrack"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
