package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/tapglue/multibuy/platform/settings"
)

const component = "multibuy-probe"

func main() {
	var (
		configFile = flag.String("config.file", "", "Settings file used to find the API port when no target is given")
		interval   = flag.Duration("interval", time.Second, "Pause between probes")
		key        = flag.String("key", "test", "Key to probe")
		target     = flag.String("target", "", "Base URL of the counter API")
	)
	flag.Parse()

	logger := log.With(
		log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout)),
		"component", component,
		"ts", log.DefaultTimestampUTC,
	)

	url := *target
	if url == "" {
		s, err := settings.Load(*configFile, os.Getenv)
		if err != nil {
			_ = level.Error(logger).Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}

		_, port, err := net.SplitHostPort(s.Listen)
		if err != nil {
			_ = level.Error(logger).Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}

		url = fmt.Sprintf("http://127.0.0.1:%s", port)
	}

	_ = level.Info(logger).Log("lifecycle", "start", "target", url)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		client = &http.Client{Timeout: 5 * time.Second}
		ticker = time.NewTicker(*interval)
	)
	defer ticker.Stop()

	for {
		begin := time.Now()

		count, err := probe(ctx, client, url, *key)
		if err != nil {
			_ = level.Error(logger).Log("err", err, "key", *key)
		} else {
			_ = level.Info(logger).Log(
				"count", count,
				"duration_ms", time.Since(begin).Milliseconds(),
				"key", *key,
			)
		}

		select {
		case <-ctx.Done():
			_ = level.Info(logger).Log("lifecycle", "stop")
			return
		case <-ticker.C:
		}
	}
}

func probe(ctx context.Context, client *http.Client, url, key string) (uint32, error) {
	body, err := json.Marshal(struct {
		Key string `json:"key"`
	}{
		Key: key,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/v1/get", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("probe failed: %s", res.Status)
	}

	p := struct {
		Count uint32 `json:"count"`
	}{}

	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return 0, err
	}

	return p.Count, nil
}
