package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with the text format", func() {
			var buf bytes.Buffer
			So(Init(WithWriter(&buf)), ShouldBeNil)
			Get().Info(context.Background(), "hello", String("k", "v"))

			Convey("Then it writes key=value pairs with a source", func() {
				So(buf.String(), ShouldContainSubstring, "msg=hello")
				So(buf.String(), ShouldContainSubstring, "k=v")
				So(buf.String(), ShouldContainSubstring, "source=")
				So(buf.String(), ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When initialized with the json format", func() {
			var buf bytes.Buffer
			So(Init(WithFormat("json"), WithWriter(&buf)), ShouldBeNil)
			Named("lineup").Warn(context.Background(), "anomaly",
				Int("event_num", 7), Bool("repaired", true), Duration("took", time.Second), Error(errors.New("boom")))

			Convey("Then every record is a JSON object carrying the component", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "anomaly")
				So(rec["component"], ShouldEqual, "lineup")
				So(rec["event_num"], ShouldEqual, 7.0)
				So(rec["error"], ShouldEqual, "boom")
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given an initialized logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARNING"), ShouldBeNil)
			Get().Info(context.Background(), "quiet")
			Get().Warn(context.Background(), "loud")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "quiet")
				So(buf.String(), ShouldContainSubstring, "loud")
			})
		})

		Convey("When lowered to debug", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(context.Background(), "details")

			Convey("Then debug records are written", func() {
				So(strings.Count(buf.String(), "details"), ShouldEqual, 1)
			})
		})

		Convey("When given nonsense", func() {
			Convey("Then it is rejected", func() {
				So(SetLevelString("loud"), ShouldNotBeNil)
			})
		})

		Reset(func() { _ = SetLevelString("info") })
	})
}

func TestNop(t *testing.T) {
	Convey("The no-op logger accepts calls and names", t, func() {
		l := Nop().Named("x")
		So(func() { l.Info(context.Background(), "ignored") }, ShouldNotPanic)
		So(Sync(), ShouldBeNil)
	})
}
