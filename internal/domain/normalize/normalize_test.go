package normalize_test

import (
	"errors"
	"testing"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }

func TestUser(t *testing.T) {
	Convey("Given raw user records", t, func() {
		Convey("When the international name is present", func() {
			raw := &normalize.RawUser{
				ID:    "00000005",
				Names: normalize.RawNames{International: "Werster", Japanese: "ワースター"},
			}
			user, placeholder, err := normalize.User(raw)

			Convey("Then it wins the preference order and derives the slug", func() {
				So(err, ShouldBeNil)
				So(placeholder, ShouldBeFalse)
				So(user.ID, ShouldEqual, 5)
				So(user.Name, ShouldEqual, "Werster")
				So(user.Slug, ShouldEqual, "werster")
			})
		})

		Convey("When only the secondary script name is present", func() {
			raw := &normalize.RawUser{
				ID:    "00000006",
				Names: normalize.RawNames{Japanese: "Runner Six"},
			}
			user, placeholder, err := normalize.User(raw)

			Convey("Then the fallback candidate is chosen", func() {
				So(err, ShouldBeNil)
				So(placeholder, ShouldBeFalse)
				So(user.Name, ShouldEqual, "Runner Six")
			})
		})

		Convey("When every name candidate is empty", func() {
			raw := &normalize.RawUser{ID: "00000007"}
			user, placeholder, err := normalize.User(raw)

			Convey("Then the user is kept with a synthetic placeholder name", func() {
				So(err, ShouldBeNil)
				So(placeholder, ShouldBeTrue)
				So(user.Name, ShouldEqual, "user 00000007")
				So(user.Slug, ShouldEqual, "user-00000007")
			})
		})

		Convey("When the id is not decodable", func() {
			_, _, err := normalize.User(&normalize.RawUser{ID: "xyz", Names: normalize.RawNames{International: "X"}})

			Convey("Then it fails with an invalid-id error", func() {
				So(err, ShouldWrap, normalize.ErrInvalidID)
			})
		})
	})
}

func TestGame(t *testing.T) {
	Convey("Given a raw game record with embedded collections", t, func() {
		raw := &normalize.RawGame{
			ID:      "00000001",
			Names:   normalize.RawNames{International: "Super Metroid"},
			Ruleset: normalize.RawRuleset{DefaultTime: "ingame"},
		}
		raw.Categories.Data = []normalize.RawCategory{
			{ID: "00000002", Name: "Any%", Type: "per-game", Rules: "beat the game"},
			{ID: "00000003", Name: "Any%", Type: "per-level"},
		}
		raw.Levels.Data = []normalize.RawLevel{
			{ID: "00000004", Name: "Brinstar"},
		}

		Convey("When normalized", func() {
			game, categories, levels, err := normalize.Game(raw)

			Convey("Then the three outputs are produced in one pass", func() {
				So(err, ShouldBeNil)
				So(game.Slug, ShouldEqual, "super-metroid")
				So(game.PrimaryTiming, ShouldEqual, model.TimingIGT)
				So(categories, ShouldHaveLength, 2)
				So(levels, ShouldHaveLength, 1)
			})

			Convey("Then category slugs derive from their own names", func() {
				So(categories[0].Slug, ShouldEqual, "anypercent")
				So(categories[0].Per, ShouldEqual, model.PerGame)
				So(categories[1].Per, ShouldEqual, model.PerLevel)
				So(categories[0].GameID, ShouldEqual, game.ID)
			})

			Convey("Then level slugs derive from their names too", func() {
				So(levels[0].Slug, ShouldEqual, "brinstar")
				So(levels[0].GameID, ShouldEqual, game.ID)
			})
		})

		Convey("When a category declares an unknown type", func() {
			raw.Categories.Data[0].Type = "per-series"
			_, _, _, err := normalize.Game(raw)

			Convey("Then normalization fails loudly", func() {
				So(err, ShouldWrap, normalize.ErrCategoryType)
			})
		})

		Convey("When the game has no usable name", func() {
			raw.Names = normalize.RawNames{}
			_, _, _, err := normalize.Game(raw)

			Convey("Then it fails with NoNames", func() {
				So(err, ShouldWrap, normalize.ErrNoNames)
			})
		})

		Convey("When the ruleset is absent", func() {
			raw.Ruleset = normalize.RawRuleset{}
			game, _, _, err := normalize.Game(raw)

			Convey("Then real time is the documented default", func() {
				So(err, ShouldBeNil)
				So(game.PrimaryTiming, ShouldEqual, model.TimingRTA)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given raw run records", t, func() {
		submitted := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
		raw := &normalize.RawRun{
			ID:        "00000100",
			Game:      "00000001",
			Category:  "00000002",
			Date:      "2024-03-08",
			Submitted: &submitted,
			Status:    normalize.RawRunStatus{Status: "verified"},
			Times: normalize.RawRunTimes{
				InGame:   strPtr("PT41M12.300S"),
				RealTime: strPtr("PT43M2S"),
			},
			Players: []normalize.RawRunPlayer{
				{Rel: "user", ID: "00000005"},
				{Rel: "guest", Name: "anonymous couch runner"},
			},
			Videos: &normalize.RawRunVideos{Links: []normalize.RawLink{{URI: "https://example.com/v"}}},
		}

		Convey("When the run is verified", func() {
			run, err := normalize.Run(raw)

			Convey("Then durations parse to milliseconds preserving absence", func() {
				So(err, ShouldBeNil)
				So(run, ShouldNotBeNil)
				igt, ok := run.Times.Get(model.TimingIGT)
				So(ok, ShouldBeTrue)
				So(igt, ShouldEqual, uint64(41*60*1000+12300))
				_, ok = run.Times.Get(model.TimingRTANoLoads)
				So(ok, ShouldBeFalse)
			})

			Convey("Then players resolve to user references and guests", func() {
				So(run.Players, ShouldHaveLength, 2)
				So(run.Players[0].UserID, ShouldEqual, 5)
				So(run.Players[1].IsGuest(), ShouldBeTrue)
			})

			Convey("Then the performed date is midnight UTC", func() {
				So(run.Date, ShouldNotBeNil)
				So(run.Date.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When the run is not verified", func() {
			for _, status := range []string{"new", "rejected", ""} {
				raw.Status.Status = status
				run, err := normalize.Run(raw)

				Convey("Then status "+status+" normalizes to no output, not an error", func() {
					So(err, ShouldBeNil)
					So(run, ShouldBeNil)
				})
			}
		})

		Convey("When every duration is absent", func() {
			raw.Times = normalize.RawRunTimes{}
			_, err := normalize.Run(raw)

			Convey("Then the constructed run fails its own validation", func() {
				var verr *normalize.ValidationError
				So(err, ShouldNotBeNil)
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Kind, ShouldEqual, model.KindRun)
			})
		})

		Convey("When a player carries an unknown rel", func() {
			raw.Players = []normalize.RawRunPlayer{{Rel: "team", ID: "00000005"}}
			_, err := normalize.Run(raw)

			Convey("Then normalization fails loudly", func() {
				So(err, ShouldWrap, normalize.ErrPlayerRel)
			})
		})
	})
}
