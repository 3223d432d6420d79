package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with metrics", t, func() {
		Convey("When the handler succeeds", func() {
			called := false
			wrapped := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}, "test")

			rec := httptest.NewRecorder()
			wrapped(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			Convey("Then the request passes through", func() {
				So(called, ShouldBeTrue)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the handler fails", func() {
			wrapped := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}, "test")

			rec := httptest.NewRecorder()

			Convey("Then recording the error does not panic", func() {
				So(func() {
					wrapped(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
				}, ShouldNotPanic)
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When a handler never writes a header", func() {
			wrapped := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			}, "test")

			rec := httptest.NewRecorder()
			wrapped(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			Convey("Then the implicit 200 is captured", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		Convey("Then each maps to its error class", func() {
			So(getErrorType(500), ShouldEqual, "server_error")
			So(getErrorType(503), ShouldEqual, "server_error")
			So(getErrorType(404), ShouldEqual, "not_found")
			So(getErrorType(400), ShouldEqual, "client_error")
			So(getErrorType(422), ShouldEqual, "client_error")
			So(getErrorType(200), ShouldEqual, "unknown")
		})
	})
}
