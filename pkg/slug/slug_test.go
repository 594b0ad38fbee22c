package slug_test

import (
	"testing"

	"github.com/runindex/runindex/pkg/slug"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonical(t *testing.T) {
	Convey("Given the internal slug derivation", t, func() {
		Convey("Then plain names lowercase with hyphens", func() {
			So(slug.Canonical("Super Mario 64"), ShouldEqual, "super-mario-64")
			So(slug.Canonical("Any%"), ShouldEqual, "anypercent")
			So(slug.Canonical("100%"), ShouldEqual, "100percent")
		})

		Convey("Then spelled-out characters join without extra hyphens", func() {
			So(slug.Canonical("Sonic & Knuckles"), ShouldEqual, "sonic-and-knuckles")
			So(slug.Canonical("A+B"), ShouldEqual, "aplusb")
		})

		Convey("Then runs of separators collapse to one hyphen", func() {
			So(slug.Canonical("Foo   ---  Bar"), ShouldEqual, "foo-bar")
			So(slug.Canonical("  trimmed!  "), ShouldEqual, "trimmed")
		})

		Convey("Then diacritics transliterate lossily", func() {
			So(slug.Canonical("Pokémon Éléctrique"), ShouldEqual, "pokemon-electrique")
		})

		Convey("Then names with no usable characters yield the empty slug", func() {
			So(slug.Canonical("!!!"), ShouldEqual, "")
			So(slug.Canonical(""), ShouldEqual, "")
		})
	})
}

func TestUpstream(t *testing.T) {
	Convey("Given the upstream-compatible slug derivation", t, func() {
		Convey("Then separators become underscores and case survives", func() {
			So(slug.Upstream("Super Mario 64"), ShouldEqual, "Super_Mario_64")
		})

		Convey("Then slashes and apostrophes are stripped, not replaced", func() {
			So(slug.Upstream("King's Quest"), ShouldEqual, "Kings_Quest")
			So(slug.Upstream("Ratchet/Clank"), ShouldEqual, "RatchetClank")
		})

		Convey("Then it differs from the canonical slug and is not interchangeable", func() {
			name := "King's Quest"
			So(slug.Canonical(name), ShouldEqual, "king-s-quest")
			So(slug.Upstream(name), ShouldNotEqual, slug.Canonical(name))
		})
	})
}
