package tables_test

import (
	"testing"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/tables"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTables(t *testing.T) {
	Convey("Given empty tables", t, func() {
		tbl := tables.New()

		Convey("When inserting rows", func() {
			tbl.PutGame(model.Game{ID: 1, Slug: "a", Name: "A"})
			tbl.PutGame(model.Game{ID: 2, Slug: "b", Name: "B"})

			Convey("Then rows are retrievable by id", func() {
				g, ok := tbl.Game(1)
				So(ok, ShouldBeTrue)
				So(g.Slug, ShouldEqual, "a")
			})

			Convey("Then listing is ordered by id", func() {
				games := tbl.Games()
				So(games, ShouldHaveLength, 2)
				So(games[0].ID, ShouldEqual, 1)
				So(games[1].ID, ShouldEqual, 2)
			})
		})

		Convey("When inserting the same id twice", func() {
			tbl.PutUser(model.User{ID: 9, Slug: "old", Name: "Old"})
			tbl.PutUser(model.User{ID: 9, Slug: "new", Name: "New"})

			Convey("Then the last write wins", func() {
				u, ok := tbl.User(9)
				So(ok, ShouldBeTrue)
				So(u.Slug, ShouldEqual, "new")
				So(tbl.Len(), ShouldEqual, 1)
			})
		})

		Convey("When removing rows", func() {
			tbl.PutRun(model.Run{ID: 5, GameID: 1, CategoryID: 2})

			Convey("Then removal reports existence and shrinks the set", func() {
				So(tbl.Remove(model.RowRef{Kind: model.KindRun, ID: 5}), ShouldBeTrue)
				So(tbl.Remove(model.RowRef{Kind: model.KindRun, ID: 5}), ShouldBeFalse)
				So(tbl.Len(), ShouldEqual, 0)
			})
		})

		Convey("Then counts break down by entity type", func() {
			tbl.PutGame(model.Game{ID: 1})
			tbl.PutLevel(model.Level{ID: 2, GameID: 1})
			counts := tbl.Counts()
			So(counts["games"], ShouldEqual, 1)
			So(counts["levels"], ShouldEqual, 1)
			So(counts["runs"], ShouldEqual, 0)
		})
	})
}
