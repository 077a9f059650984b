package api

import (
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"
	"mayday/coordinator/internal/providers"
	"mayday/coordinator/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repositories struct {
	Stats *repositories.StatsRepository
}

type Services struct {
	Cache      common.CacheInterface
	Geocoder   providers.Geocoder
	Reconciler *services.StatusReconciler
	Users      *services.UserService
	Volunteers *services.VolunteerService
	Events     *services.EventService
	Locations  *services.LocationService
	Resources  *services.ResourceService
	Stats      *services.StatsService
}

// Sinks groups the notification fan-out. Stream and MQTT are nil when not configured.
type Sinks struct {
	Broadcaster *common.Broadcaster
	Stream      *common.RedisStreamService
	MQTT        *common.MQTTSink
	Services    common.NotificationSink
}

type Dependencies struct {
	Config   *config.Config
	ORM      *gorm.DB
	SQLX     *sqlx.DB
	Redis    *redis.Client
	Metrics  *metrics.MetricsRegistry
	Tokens   *auth.TokenIssuer
	Repo     *Repositories
	Services *Services
	Sinks    *Sinks
	UpSince  time.Time
}

// InitDependencies wires every service. Redis, MQTT and the geocoder are
// optional; when one is missing or unreachable the in-process fallback is used.
func InitDependencies(cfg *config.Config, orm *gorm.DB, sqlxDB *sqlx.DB, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		ORM:     orm,
		SQLX:    sqlxDB,
		Metrics: metricsReg,
		Tokens:  auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Repo: &Repositories{
			Stats: repositories.NewStatsRepository(sqlxDB),
		},
		UpSince: time.Now(),
	}

	var cache common.CacheInterface
	if cfg.RedisEnabled() {
		client, err := common.NewRedisClient(cfg.RedisAddr(), cfg.Redis.Password)
		if err != nil {
			logging.Warn("Redis unavailable, using in-memory cache and local notifications", "error", err.Error())
			_ = client.Close()
		} else {
			deps.Redis = client
			cache = common.NewRedisCacheService(client, "mayday:")
		}
	}
	if cache == nil {
		cache = common.NewCacheService(300, 600)
	}

	sinks := &Sinks{Broadcaster: common.NewBroadcaster(64, metricsReg)}
	var fanout common.MultiSink
	if deps.Redis != nil {
		// Services publish to the stream; the relay feeds the local broadcaster
		// so every instance's listeners see every change.
		sinks.Stream = common.NewRedisStreamService(deps.Redis, constants.NotificationStream, constants.NotificationStreamMax, metricsReg)
		fanout = append(fanout, sinks.Stream)
	} else {
		fanout = append(fanout, sinks.Broadcaster)
	}
	if cfg.MQTTEnabled() {
		mqttSink, err := common.NewMQTTSink(cfg.MQTT, metricsReg)
		if err != nil {
			logging.Warn("MQTT broker unavailable, notifications will not be bridged", "broker", cfg.MQTT.Broker, "error", err.Error())
		} else {
			sinks.MQTT = mqttSink
			fanout = append(fanout, mqttSink)
		}
	}
	sinks.Services = fanout
	deps.Sinks = sinks

	var geocoder providers.Geocoder
	if cfg.Geocoding.Enabled {
		nominatim := providers.NewNominatimProvider(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout)
		geocoder = providers.NewCachedGeocoder(nominatim, cache, constants.GeocodeCacheTTL, metricsReg)
	}

	reconciler := services.NewStatusReconciler(orm, metricsReg)
	locations := services.NewLocationService(orm, geocoder, sinks.Services)
	volunteers := services.NewVolunteerService(orm, reconciler, sinks.Services, metricsReg)

	deps.Services = &Services{
		Cache:      cache,
		Geocoder:   geocoder,
		Reconciler: reconciler,
		Users:      services.NewUserService(orm, reconciler, sinks.Services),
		Volunteers: volunteers,
		Events:     services.NewEventService(orm, locations, volunteers, sinks.Services),
		Locations:  locations,
		Resources:  services.NewResourceService(orm, sinks.Services),
		Stats:      services.NewStatsService(deps.Repo.Stats, cache, metricsReg),
	}

	logging.Info("Dependencies initialized",
		"redis", deps.Redis != nil,
		"mqtt", sinks.MQTT != nil,
		"geocoding", geocoder != nil,
	)
	return deps, nil
}

// Close releases the external connections opened by InitDependencies.
func (d *Dependencies) Close() {
	d.Sinks.Broadcaster.Close()
	if d.Sinks.MQTT != nil {
		d.Sinks.MQTT.Close()
	}
	if d.Services.Cache != nil {
		_ = d.Services.Cache.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
