package pagination

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

func queryParams(t *testing.T, uri string) *Params {
	t.Helper()

	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	ctx.Request().SetRequestURI(uri)
	return GetParams(ctx)
}

func TestGetParams(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", uri: "/members", wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "explicit page and limit", uri: "/members?page=3&limit=10", wantPage: 3, wantLimit: 10, wantOffset: 20},
		{name: "page below one", uri: "/members?page=0", wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "negative page", uri: "/members?page=-2", wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "zero limit falls back", uri: "/members?limit=0", wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "limit above maximum is capped", uri: "/members?limit=500", wantPage: 1, wantLimit: MaxLimit, wantOffset: 0},
		{name: "garbage values fall back", uri: "/members?page=abc&limit=xyz", wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := queryParams(t, tt.uri)
			if params.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", params.Page, tt.wantPage)
			}
			if params.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", params.Limit, tt.wantLimit)
			}
			if params.Offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", params.Offset, tt.wantOffset)
			}
		})
	}
}

func TestGetMeta(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		limit          int
		total          int64
		wantTotalPages int
		wantHasNext    bool
		wantHasPrev    bool
	}{
		{name: "empty result", page: 1, limit: 20, total: 0, wantTotalPages: 0, wantHasNext: false, wantHasPrev: false},
		{name: "single partial page", page: 1, limit: 20, total: 5, wantTotalPages: 1, wantHasNext: false, wantHasPrev: false},
		{name: "exact page boundary", page: 1, limit: 20, total: 40, wantTotalPages: 2, wantHasNext: true, wantHasPrev: false},
		{name: "middle page", page: 2, limit: 10, total: 35, wantTotalPages: 4, wantHasNext: true, wantHasPrev: true},
		{name: "last page", page: 4, limit: 10, total: 35, wantTotalPages: 4, wantHasNext: false, wantHasPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := GetMeta(&Params{Page: tt.page, Limit: tt.limit}, tt.total)
			if meta.TotalPages != tt.wantTotalPages {
				t.Errorf("total pages = %d, want %d", meta.TotalPages, tt.wantTotalPages)
			}
			if meta.HasNext != tt.wantHasNext {
				t.Errorf("has next = %v, want %v", meta.HasNext, tt.wantHasNext)
			}
			if meta.HasPrev != tt.wantHasPrev {
				t.Errorf("has prev = %v, want %v", meta.HasPrev, tt.wantHasPrev)
			}
			if meta.Total != tt.total {
				t.Errorf("total = %d, want %d", meta.Total, tt.total)
			}
		})
	}
}
