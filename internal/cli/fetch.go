package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"maploader/internal/config"
	"maploader/internal/fetch"
	"maploader/internal/loader"
	"maploader/internal/obs"
	"maploader/internal/resource"
	"maploader/internal/respcache"
	"maploader/internal/transport"
)

var fetchFlags struct {
	kind     string
	output   string
	etag     string
	modified string
	timeout  time.Duration
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch one resource through the loading engine",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFlags.kind, "kind", "unknown", "resource kind (style, source, tile, glyphs, sprite-image, sprite-json)")
	fetchCmd.Flags().StringVarP(&fetchFlags.output, "output", "o", "", "write the body to a file instead of stdout")
	fetchCmd.Flags().StringVar(&fetchFlags.etag, "etag", "", "revalidate against this entity tag")
	fetchCmd.Flags().StringVar(&fetchFlags.modified, "modified", "", "revalidate against this Last-Modified time (HTTP date)")
	fetchCmd.Flags().DurationVar(&fetchFlags.timeout, "timeout", 5*time.Minute, "give up after this long")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := obs.NewZapLogger(cfg.Logger.Level)
	defer func() { _ = log.Sync() }()
	metrics := obs.NewMetrics()

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics listener failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	kind, err := parseKind(fetchFlags.kind)
	if err != nil {
		return err
	}

	httpTransport := transport.NewHTTP(transport.Options{
		DialTimeout:           cfg.Transport.DialTimeout,
		TLSHandshakeTimeout:   cfg.Transport.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.Transport.ResponseHeaderTimeout,
		IdleConnTimeout:       cfg.Transport.IdleConnTimeout,
		MaxIdleConns:          cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.Transport.MaxIdleConnsPerHost,
		UserAgent:             cfg.UserAgent,
	}, log)

	fetchCtx := fetch.NewContext(fetch.Options{
		Transport: httpTransport,
		Logger:    log,
		Metrics:   metrics,
	})
	defer fetchCtx.Close()

	res := resource.Resource{Kind: kind, URL: args[0]}

	type outcome struct {
		resp resource.Response
		hint fetch.Hint
	}
	done := make(chan outcome, 1)
	deliver := func(resp resource.Response, hint fetch.Hint) {
		done <- outcome{resp: resp, hint: hint}
	}

	if prior := priorFromFlags(); prior != nil {
		fetchCtx.CreateRequest(res, deliver, prior)
	} else {
		store, closeStore, err := buildCache(cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		ldr := loader.New(loader.Options{
			Cache:   store,
			Fetcher: fetchCtx,
			Logger:  log,
			Metrics: metrics,
		})
		ldr.Load(context.Background(), res, deliver)
	}

	select {
	case result := <-done:
		return writeResult(log, result.resp, result.hint)
	case <-time.After(fetchFlags.timeout):
		return fmt.Errorf("fetch timed out after %s", fetchFlags.timeout)
	}
}

func buildCache(cfg *config.Config, log obs.Logger) (respcache.Store, func(), error) {
	if !cfg.Redis.Enabled {
		store := respcache.NewMemoryStore(0)
		return store, func() {}, nil
	}
	store, err := respcache.NewRedisStore(respcache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect response cache: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("closing response cache", "error", err)
		}
	}, nil
}

func priorFromFlags() *resource.Response {
	if fetchFlags.etag == "" && fetchFlags.modified == "" {
		return nil
	}
	prior := &resource.Response{Status: resource.StatusSuccessful, Etag: fetchFlags.etag}
	if fetchFlags.modified != "" {
		if parsed, err := http.ParseTime(fetchFlags.modified); err == nil {
			prior.Modified = parsed
		}
	}
	return prior
}

func parseKind(name string) (resource.Kind, error) {
	kinds := map[string]resource.Kind{
		"unknown":      resource.KindUnknown,
		"style":        resource.KindStyle,
		"source":       resource.KindSource,
		"tile":         resource.KindTile,
		"glyphs":       resource.KindGlyphs,
		"sprite-image": resource.KindSpriteImage,
		"sprite-json":  resource.KindSpriteJSON,
	}
	kind, ok := kinds[name]
	if !ok {
		return resource.KindUnknown, fmt.Errorf("unknown resource kind %q", name)
	}
	return kind, nil
}

func writeResult(log obs.Logger, resp resource.Response, hint fetch.Hint) error {
	if resp.Status == resource.StatusError {
		return fmt.Errorf("fetch failed: %s", resp.Message)
	}
	log.Info("fetch completed",
		"hint", hint.String(),
		"bytes", len(resp.Data),
		"etag", resp.Etag,
		"expires", resp.Expires,
	)
	if fetchFlags.output != "" {
		return os.WriteFile(fetchFlags.output, resp.Data, 0o644)
	}
	_, err := os.Stdout.Write(resp.Data)
	return err
}
