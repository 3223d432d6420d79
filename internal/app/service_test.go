package service_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/okian/tally/internal/adapters/repository"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// startService spins up a service backed by a temp-dir database.
func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{
		service.WithDBPath(filepath.Join(t.TempDir(), "ledger.db")),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func submission(id, game string, entityID int64, payload string, ts int64) model.Submission {
	return model.Submission{
		SubmissionID: id,
		GameID:       game,
		EntityID:     entityID,
		Payload:      json.RawMessage(payload),
		RecordedAt:   ts,
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service with a temp database", t, func() {
		svc := service.New(service.WithDBPath(filepath.Join(t.TempDir(), "ledger.db")))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given a service with demo seeding enabled", t, func() {
		svc := startService(t, service.WithSeedDemoData(true))

		Convey("Then the demo patrol and troop exist", func() {
			entities, err := svc.Entities(context.Background())
			So(err, ShouldBeNil)
			So(entities, ShouldHaveLength, 2)
			names := []string{entities[0].Name, entities[1].Name}
			So(names, ShouldContain, "Flaming Flamingoes")
			So(names, ShouldContain, "Troop 101")
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service with demo entities", t, func() {
		ctx := context.Background()
		svc := startService(t, service.WithSeedDemoData(true))

		Convey("When submitting a new score", func() {
			status, err := svc.Submit(ctx, submission("s-1", "game-1", 101, `{"points":42}`, 1000))

			Convey("Then it reports created", func() {
				So(err, ShouldBeNil)
				So(status, ShouldEqual, model.SubmitCreated)
			})

			Convey("And a retry reports already_exists", func() {
				So(err, ShouldBeNil)
				retry, err := svc.Submit(ctx, submission("s-1", "game-1", 101, `{"points":42}`, 1000))
				So(err, ShouldBeNil)
				So(retry, ShouldEqual, model.SubmitAlreadyExists)
			})
		})

		Convey("When submitting for an unknown entity", func() {
			_, err := svc.Submit(ctx, submission("s-1", "game-1", 999, `{"points":42}`, 1000))

			Convey("Then the sentinel survives the service layer", func() {
				So(err, ShouldWrap, repository.ErrEntityNotFound)
			})
		})

		Convey("When submitting garbage", func() {
			_, err := svc.Submit(ctx, submission("", "", 0, ``, 0))

			Convey("Then it is rejected as invalid", func() {
				So(err, ShouldWrap, repository.ErrInvalidSubmission)
			})
		})
	})
}

func TestService_ListAndExport(t *testing.T) {
	Convey("Given a service holding a few scores", t, func() {
		ctx := context.Background()
		svc := startService(t, service.WithSeedDemoData(true))

		_, err := svc.Submit(ctx, submission("s-1", "game-1", 101, `{"points":10}`, 1000))
		So(err, ShouldBeNil)
		_, err = svc.Submit(ctx, submission("s-2", "game-1", 201, `{"time_seconds":88.5}`, 2000))
		So(err, ShouldBeNil)

		Convey("When listing all data", func() {
			stats, records, err := svc.ListAll(ctx)

			Convey("Then records and per-game counts come back", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(stats["game-1"], ShouldEqual, 2)
			})
		})

		Convey("When exporting", func() {
			table, err := svc.ExportFlat(ctx)

			Convey("Then the table covers every record with the key union", func() {
				So(err, ShouldBeNil)
				So(table.Rows, ShouldHaveLength, 2)
				So(table.Header, ShouldContain, "data_points")
				So(table.Header, ShouldContain, "data_time_seconds")
			})
		})
	})

	Convey("Given a service with an export row cap", t, func() {
		ctx := context.Background()
		svc := startService(t,
			service.WithSeedDemoData(true),
			service.WithMaxExportRows(2),
		)

		_, err := svc.Submit(ctx, submission("s-1", "game-1", 101, `{"points":1}`, 1000))
		So(err, ShouldBeNil)
		_, err = svc.Submit(ctx, submission("s-2", "game-1", 201, `{"points":2}`, 2000))
		So(err, ShouldBeNil)
		_, err = svc.Submit(ctx, submission("s-3", "game-1", 101, `{"points":3}`, 3000))
		So(err, ShouldBeNil)

		Convey("When exporting over the cap", func() {
			table, err := svc.ExportFlat(ctx)

			Convey("Then only the newest rows survive", func() {
				So(err, ShouldBeNil)
				So(table.Rows, ShouldHaveLength, 2)
				So(table.Rows[0][0], ShouldEqual, `"s-2"`)
				So(table.Rows[1][0], ShouldEqual, `"s-3"`)
			})
		})

		Convey("When the ledger fits under the cap", func() {
			deleted, err := svc.Compact(ctx)
			So(err, ShouldBeNil)
			So(deleted, ShouldEqual, 1)

			table, err := svc.ExportFlat(ctx)

			Convey("Then nothing is dropped", func() {
				So(err, ShouldBeNil)
				So(table.Rows, ShouldHaveLength, 2)
			})
		})
	})
}

func TestService_CompactAndReset(t *testing.T) {
	Convey("Given a service with superseded scores", t, func() {
		ctx := context.Background()
		svc := startService(t, service.WithSeedDemoData(true))

		_, err := svc.Submit(ctx, submission("s-old", "game-1", 101, `{"points":10}`, 1000))
		So(err, ShouldBeNil)
		_, err = svc.Submit(ctx, submission("s-new", "game-1", 101, `{"points":20}`, 2000))
		So(err, ShouldBeNil)

		Convey("When compacting", func() {
			deleted, err := svc.Compact(ctx)

			Convey("Then superseded records are removed", func() {
				So(err, ShouldBeNil)
				So(deleted, ShouldEqual, 1)
				_, records, err := svc.ListAll(ctx)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].SubmissionID, ShouldEqual, "s-new")
			})
		})

		Convey("When resetting", func() {
			deleted, err := svc.ResetScores(ctx)

			Convey("Then the ledger empties but entities remain", func() {
				So(err, ShouldBeNil)
				So(deleted, ShouldEqual, 2)
				entities, err := svc.Entities(ctx)
				So(err, ShouldBeNil)
				So(entities, ShouldHaveLength, 2)
			})
		})
	})
}

func TestService_AddEntity(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startService(t)

		Convey("When registering a new patrol", func() {
			e, err := svc.AddEntity(ctx, "Screaming Eagles", model.KindPatrol, "13")

			Convey("Then it becomes scoreable immediately", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldBeGreaterThan, 0)
				status, err := svc.Submit(ctx, submission("s-1", "game-1", e.ID, `{"points":5}`, 1000))
				So(err, ShouldBeNil)
				So(status, ShouldEqual, model.SubmitCreated)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with data", t, func() {
		ctx := context.Background()
		svc := startService(t, service.WithSeedDemoData(true))
		_, err := svc.Submit(ctx, submission("s-1", "game-1", 101, `{"points":1}`, 1000))
		So(err, ShouldBeNil)

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then counts reflect the stored data", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["entities"], ShouldEqual, int64(2))
				So(stats["scores"], ShouldEqual, int64(1))
			})
		})
	})
}
