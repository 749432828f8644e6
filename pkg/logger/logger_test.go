package logger_test

import (
	"context"
	"testing"

	"github.com/okian/bakeboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInitAndGet(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			// should not panic
			l.Info(context.Background(), "hello", logger.String("k", "v"))
		})

		Convey("And Named returns a child logger", func() {
			l := logger.Named("store")
			So(l, ShouldNotBeNil)
			l.Debug(context.Background(), "child message", logger.Int("n", 1))
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then known level names are accepted", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", "  INFO  "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("And unknown level names are rejected", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then they carry key and value through", func() {
			f := logger.String("name", "ada")
			So(f.Key, ShouldEqual, "name")
			So(f.Value, ShouldEqual, "ada")

			b := logger.Bool("active", true)
			So(b.Value, ShouldEqual, true)

			e := logger.Error(nil)
			So(e.Key, ShouldEqual, "error")
		})
	})
}
