package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/tally/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// Env-mutating scenarios live in separate Test functions: t.Setenv only
// restores at function end, so sharing one function across Convey leaf
// re-runs would leak one leaf's environment into the next.

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		Convey("Then it should carry the documented defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":3000")
			So(cfg.DBPath, ShouldEqual, "data/camporee.db")
			So(cfg.RosterDir, ShouldBeEmpty)
			So(cfg.GamesDir, ShouldBeEmpty)
			So(cfg.MaxExportRows, ShouldEqual, 0)
			So(cfg.SeedDemoData, ShouldBeFalse)
		})
	})
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":3000")
			So(cfg.DBPath, ShouldEqual, "data/camporee.db")
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TALLY_ADDR", ":8080")
	t.Setenv("TALLY_DB_PATH", "/tmp/test.db")
	t.Setenv("TALLY_LOG_LEVEL", "debug")
	t.Setenv("TALLY_MAX_EXPORT_ROWS", "500")
	t.Setenv("TALLY_SEED_DEMO_DATA", "true")

	Convey("Given environment variable overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the env values win", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.DBPath, ShouldEqual, "/tmp/test.db")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.MaxExportRows, ShouldEqual, 500)
			So(cfg.SeedDemoData, ShouldBeTrue)
		})
	})
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\nroster_dir: /data/roster\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TALLY_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9000")
			So(cfg.RosterDir, ShouldEqual, "/data/roster")
			So(cfg.DBPath, ShouldEqual, "data/camporee.db")
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TALLY_CONFIG", path)
	t.Setenv("TALLY_ADDR", ":7000")

	Convey("Given both a config file and an env override", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the env value wins", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7000")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TALLY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	Convey("Given a TALLY_CONFIG pointing at a missing file", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with a load error", func() {
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}

func TestLoadBlankAddr(t *testing.T) {
	t.Setenv("TALLY_ADDR", "   ")

	Convey("Given a blanked-out required value", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then validation rejects the config", func() {
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}

func TestLoadNegativeExportCap(t *testing.T) {
	t.Setenv("TALLY_MAX_EXPORT_ROWS", "-5")

	Convey("Given a negative export row cap", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then validation rejects the config", func() {
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
