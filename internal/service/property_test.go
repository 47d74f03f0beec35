package service

import (
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPaginationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total pages cover every row", prop.ForAll(
		func(total int64, perPage int) bool {
			pages := calculateTotalPages(total, perPage)
			if total == 0 {
				return pages == 1
			}
			return int64(pages)*int64(perPage) >= total && int64(pages-1)*int64(perPage) < total
		},
		gen.Int64Range(0, 100000),
		gen.IntRange(1, 100),
	))

	properties.Property("per page is always within 1..100", prop.ForAll(
		func(perPage int) bool {
			got := normalizePerPage(perPage, 10)
			return got >= 1 && got <= 100
		},
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestRatingAndExcerptProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("clamped rating stays in 1..5", prop.ForAll(
		func(rating int) bool {
			got := clampRating(rating, defaultTestimonialRating)
			return got >= 1 && got <= 5
		},
		gen.Int(),
	))

	properties.Property("excerpt never exceeds limit plus ellipsis", prop.ForAll(
		func(text string, limit int) bool {
			return utf8.RuneCountInString(DeriveExcerpt(text, limit)) <= limit+1
		},
		gen.AlphaString(),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
