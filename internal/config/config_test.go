package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/bakeboard/internal/config"
)

func TestNewDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then it should carry sensible defaults", func() {
			So(cfg.Addr, ShouldEqual, ":8090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.DBPath, ShouldNotBeEmpty)
			So(cfg.SnapshotEventLimit, ShouldEqual, 60)
			So(cfg.ExportEventLimit, ShouldEqual, 500)
			So(cfg.BroadcastBuffer, ShouldBeGreaterThan, 0)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given env overrides", t, func() {
		t.Setenv("BAKEBOARD_ADDR", ":7070")
		t.Setenv("BAKEBOARD_LOG_LEVEL", "debug")
		t.Setenv("BAKEBOARD_SNAPSHOT_EVENT_LIMIT", "25")

		cfg, err := config.Load(context.Background())

		Convey("Then env values take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.SnapshotEventLimit, ShouldEqual, 25)
			// untouched keys keep defaults
			So(cfg.ExportEventLimit, ShouldEqual, 500)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "bakeboard.yaml")
		body := []byte("addr: \":6061\"\ndb_path: /tmp/contest.sqlite3\n")
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		t.Setenv("BAKEBOARD_CONFIG", path)

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6061")
				So(cfg.DBPath, ShouldEqual, "/tmp/contest.sqlite3")
			})
		})

		Convey("When env overrides the same key", func() {
			t.Setenv("BAKEBOARD_ADDR", ":6062")
			cfg, err := config.Load(context.Background())

			Convey("Then env wins over the file", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6062")
			})
		})
	})

	Convey("Given a missing config file", t, func() {
		t.Setenv("BAKEBOARD_CONFIG", "/nonexistent/bakeboard.yaml")

		_, err := config.Load(context.Background())

		Convey("Then loading fails with the load sentinel", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid values", t, func() {
		t.Setenv("BAKEBOARD_BROADCAST_BUFFER", "0")

		_, err := config.Load(context.Background())

		Convey("Then validation rejects them", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
