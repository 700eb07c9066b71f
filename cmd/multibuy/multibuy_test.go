package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func TestAllowLevel(t *testing.T) {
	for lvl, want := range map[string][]string{
		"debug": {"debug", "info", "warn", "error"},
		"info":  {"info", "warn", "error"},
		"WARN":  {"warn", "error"},
		"error": {"error"},
	} {
		var (
			buf    = &bytes.Buffer{}
			logger = level.NewFilter(log.NewLogfmtLogger(buf), allowLevel(lvl))
		)

		_ = level.Debug(logger).Log("msg", "debug")
		_ = level.Info(logger).Log("msg", "info")
		_ = level.Warn(logger).Log("msg", "warn")
		_ = level.Error(logger).Log("msg", "error")

		if have, want := strings.Count(buf.String(), "\n"), len(want); have != want {
			t.Errorf("%s: have %v lines, want %v", lvl, have, want)
		}

		for _, msg := range want {
			if !strings.Contains(buf.String(), "msg="+msg) {
				t.Errorf("%s: missing %s", lvl, msg)
			}
		}
	}
}
