package pagination

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, ClampInt("", 5, 1, 0))
	assert.Equal(t, 3, ClampInt("abc", 3, 1, 0))
	assert.Equal(t, 2, ClampInt("0", 2, 1, 0))
	assert.Equal(t, 2, ClampInt("-4", 2, 1, 0))
	assert.Equal(t, 50, ClampInt("100", 1, 1, 50))
	assert.Equal(t, 7, ClampInt("7", 1, 1, 10))
	assert.Equal(t, 7, ClampInt(" 7 ", 1, 1, 10))
	assert.Equal(t, 1000, ClampInt("1000", 1, 1, 0))

	// Beyond the range of int.
	assert.Equal(t, 25, ClampInt("99999999999999999999", 10, 1, 25))
	assert.Equal(t, 10, ClampInt("-99999999999999999999", 10, 1, 25))
	assert.Equal(t, math.MaxInt, ClampInt("99999999999999999999", 10, 1, 0))
}

func TestLimitsPerPage(t *testing.T) {
	tests := []struct {
		name   string
		limits Limits
		raw    string
		want   int
	}{
		{"missing uses default", ListLimits, "", 10},
		{"non numeric uses default", ListLimits, "x", 10},
		{"zero uses default", ListLimits, "0", 10},
		{"negative uses default", ListLimits, "-3", 10},
		{"within cap", ListLimits, "20", 20},
		{"list cap", ListLimits, "100", 25},
		{"filter cap", FilterLimits, "25", 10},
		{"filter below cap", FilterLimits, "4", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limits.PerPage(tt.raw))
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(3, 1))
	assert.Equal(t, 4, TotalPages(31, 10))
}

func TestResolvePage(t *testing.T) {
	assert.Equal(t, 1, ResolvePage("", 4))
	assert.Equal(t, 1, ResolvePage("two", 4))
	assert.Equal(t, 1, ResolvePage("2.0", 4))
	assert.Equal(t, 2, ResolvePage("2", 4))
	assert.Equal(t, 4, ResolvePage("999", 4))
	assert.Equal(t, 4, ResolvePage("0", 4))
	assert.Equal(t, 4, ResolvePage("-1", 4))
	assert.Equal(t, 4, ResolvePage("99999999999999999999", 4))
	assert.Equal(t, 4, ResolvePage("-99999999999999999999", 4))
}

func TestResolveHugeValues(t *testing.T) {
	assert.Equal(t, 25, ListLimits.PerPage("99999999999999999999"))

	w := ListLimits.Resolve(Request{Page: "99999999999999999999", PerPage: "5"}, 30)
	assert.Equal(t, 6, w.CurrentPage)
	assert.Equal(t, 6, w.TotalPages)
	assert.Equal(t, 25, w.Offset)
	assert.False(t, w.HasNext)
}

func TestResolve(t *testing.T) {
	w := ListLimits.Resolve(Request{Page: "1", PerPage: "2"}, 3)
	assert.Equal(t, Meta{
		Total:       3,
		PerPage:     2,
		CurrentPage: 1,
		TotalPages:  2,
		HasNext:     true,
		HasPrevious: false,
	}, w.Meta)
	assert.Equal(t, 0, w.Offset)
	assert.Equal(t, 2, w.Limit)

	w = ListLimits.Resolve(Request{Page: "999", PerPage: "2"}, 3)
	assert.Equal(t, 2, w.CurrentPage)
	assert.Equal(t, w.TotalPages, w.CurrentPage)
	assert.Equal(t, 2, w.Offset)
	assert.False(t, w.HasNext)
	assert.True(t, w.HasPrevious)
}

func TestResolveEmptyCollection(t *testing.T) {
	w := FilterLimits.Resolve(Request{Page: "3"}, 0)
	assert.Equal(t, int64(0), w.Total)
	assert.Equal(t, 1, w.CurrentPage)
	assert.Equal(t, 1, w.TotalPages)
	assert.Equal(t, 0, w.Offset)
	assert.False(t, w.HasNext)
	assert.False(t, w.HasPrevious)
}

func TestResolveTotalPagesProperty(t *testing.T) {
	for total := int64(1); total <= 40; total++ {
		for perPage := 1; perPage <= 25; perPage++ {
			w := ListLimits.Resolve(Request{Page: "1", PerPage: strconv.Itoa(perPage)}, total)
			want := int((total + int64(perPage) - 1) / int64(perPage))
			assert.Equal(t, want, w.TotalPages, "total=%d per_page=%d", total, perPage)
		}
	}
}
