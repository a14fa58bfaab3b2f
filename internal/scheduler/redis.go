package scheduler

import (
	"crypto/tls"
	"errors"

	"hiring_pipeline_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

var errNoQueue = errors.New("task queue not configured")

// connOpt parses REDIS_URL for asynq. rediss:// URLs keep their TLS config;
// REDIS_TLS_INSECURE skips verification for managed Redis with private CAs.
func connOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	raw := cfg.GetRedisURL()
	if raw == "" {
		return asynq.RedisClientOpt{}, errors.New("redis url not configured")
	}
	parsed, err := redis.ParseURL(raw)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	tlsConfig := parsed.TLSConfig
	if cfg.GetRedisTLSInsecure() {
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		} else {
			tlsConfig = tlsConfig.Clone()
		}
		tlsConfig.InsecureSkipVerify = true
	}

	return asynq.RedisClientOpt{
		Addr:      parsed.Addr,
		Username:  parsed.Username,
		Password:  parsed.Password,
		DB:        parsed.DB,
		TLSConfig: tlsConfig,
	}, nil
}

func queueName(q string) string {
	if q == "" {
		return "default"
	}
	return q
}
