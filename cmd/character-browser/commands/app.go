package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/config"
	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/Sternrassler/character-browser/pkg/i18n"
	"github.com/Sternrassler/character-browser/pkg/kv"
	"github.com/Sternrassler/character-browser/pkg/view"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app holds the wired components of one command run.
type app struct {
	cfg     config.Config
	api     *client.Client
	store   kv.Store
	redis   *redis.Client
	browser *view.Browser
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &app{cfg: cfg}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	}

	cc := cfg.ClientConfig()
	cc.Redis = a.redis
	if a.redis == nil {
		cc.Cache = cache.NewMemoryManager()
	}
	api, err := client.New(cc)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	a.api = api

	switch cfg.Store {
	case config.StoreMemory:
		a.store = kv.NewMemory()
	case config.StoreRedis:
		a.store = kv.NewRedis(a.redis, kv.DefaultRedisPrefix)
	case config.StoreSQLite:
		s, err := kv.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.store = s
	}

	b, err := view.New(view.Config{
		Fetcher: api,
		Store:   a.store,
		Printer: i18n.Printer(cfg.Locale),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.browser = b
	return a, nil
}

// Close releases every opened resource.
func (a *app) Close() error {
	var errs []error
	if a.api != nil {
		errs = append(errs, a.api.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

// show prints the document body.
func (a *app) show(w io.Writer) error {
	doc := a.browser.Document()
	if a.cfg.HTML {
		if err := dom.Render(w, doc); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	return dom.RenderText(w, doc)
}
