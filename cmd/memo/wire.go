package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/assistant"
	"github.com/pbaille/memo/internal/auth"
	"github.com/pbaille/memo/internal/classifier"
	"github.com/pbaille/memo/internal/config"
	"github.com/pbaille/memo/internal/events"
	"github.com/pbaille/memo/internal/executor"
	"github.com/pbaille/memo/internal/langdetect"
	"github.com/pbaille/memo/internal/logging"
	"github.com/pbaille/memo/internal/pending"
	"github.com/pbaille/memo/internal/speech"
	"github.com/pbaille/memo/internal/store"
)

// app holds the wired collaborators of one command run.
type app struct {
	cfg    config.Config
	loc    *time.Location
	logger *zap.Logger
	store  store.Backend
	engine *assistant.Engine

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DB.Driver = "sqlite"
		cfg.DB.SQLitePath = dbPath
	}
	return cfg, nil
}

// newApp wires storage, classification and the engine. withServices also
// connects the optional network services (speech, Redis, AMQP).
func newApp(ctx context.Context, withServices bool, opts ...assistant.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	a.loc, err = cfg.Location()
	if err != nil {
		return nil, err
	}

	if cfg.DB.Driver == "" || cfg.DB.Driver == "sqlite" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.DB.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	a.store, err = store.Open(ctx, cfg.DB, a.loc, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = a.store.Close() })

	var ps pending.Store = pending.NewMemory(pending.DefaultTTL)
	var pub events.Publisher = events.Nop{}
	if withServices {
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := rdb.Ping(ctx).Err(); err != nil {
				a.Close()
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			ps = pending.NewRedis(rdb, pending.DefaultTTL, logger)
		}
		if cfg.MQ.URL != "" {
			mq, err := events.NewAMQP(cfg.MQ.URL, cfg.MQ.Exchange, logger)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.closers = append(a.closers, mq.Close)
			pub = mq
		}
		if cfg.Speech.APIKey != "" {
			w, err := speech.NewWhisper(cfg.Speech.APIKey, cfg.Speech.BaseURL, cfg.Speech.Model)
			if err != nil {
				a.Close()
				return nil, err
			}
			opts = append(opts, assistant.WithSpeech(w))
		} else {
			logger.Warn("No speech API key, audio transcription disabled")
		}
	}

	exec := executor.New(a.store, ps, pub, logger)

	loc := a.loc
	opts = append([]assistant.Option{
		assistant.WithClock(func() time.Time { return time.Now().In(loc) }),
		assistant.WithThreshold(cfg.Classifier.Threshold),
	}, opts...)
	a.engine = assistant.New(newClassifier(cfg.Classifier, logger), langdetect.New(), exec, logger, opts...)
	return a, nil
}

func newClassifier(cfg config.ClassifierConfig, logger *zap.Logger) classifier.Classifier {
	rules := classifier.NewRules()
	if cfg.APIKey == "" {
		return rules
	}
	llm, err := classifier.NewAnthropic(cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Warn("LLM classifier unavailable, using keyword rules", zap.Error(err))
		return rules
	}
	return &classifier.Fallback{Primary: llm, Secondary: rules, Logger: logger}
}

func newLogin(cfg config.Config) *auth.Upstream {
	if cfg.Login.URL == "" {
		return nil
	}
	return auth.NewUpstream(cfg.Login.URL)
}
