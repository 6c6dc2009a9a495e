package pagination_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/query"
)

var cfg = pagination.Config{DefaultPageSize: 25, MaxPageSize: 200}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := pagination.Config{}
		if err := c.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if c != cfg {
			t.Errorf("defaults = %+v, want %+v", c, cfg)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_PAGE_DEFAULT", "10")
		t.Setenv("TEST_PAGE_MAX", "50")
		c := pagination.Config{}
		err := c.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_DEFAULT", MaxPageSize: "TEST_PAGE_MAX"})
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if c.DefaultPageSize != 10 || c.MaxPageSize != 50 {
			t.Errorf("config = %+v", c)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		c := pagination.Config{DefaultPageSize: 300, MaxPageSize: 100}
		err := c.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("Finalize() error = %v", err)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	c := cfg
	c.Merge(&pagination.Config{MaxPageSize: 500})
	if c.DefaultPageSize != 25 || c.MaxPageSize != 500 {
		t.Errorf("Merge() = %+v", c)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		in           pagination.PageRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero values", pagination.PageRequest{}, 1, 25, 0},
		{"negative page", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10, 0},
		{"above max", pagination.PageRequest{Page: 2, PageSize: 1000}, 2, 200, 200},
		{"valid", pagination.PageRequest{Page: 4, PageSize: 5}, 4, 5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.in
			r.Normalize(cfg)
			if r.Page != tt.wantPage || r.PageSize != tt.wantPageSize {
				t.Errorf("Normalize() = page %d size %d", r.Page, r.PageSize)
			}
			if r.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", r.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"abc"},
		"search":    {"IN-2025"},
		"sort":      {"-CreatedAt"},
	}

	r := pagination.PageRequestFromQuery(values, cfg)

	if r.Page != 2 || r.PageSize != 25 {
		t.Errorf("page/size = %d/%d", r.Page, r.PageSize)
	}
	if r.Search == nil || *r.Search != "IN-2025" {
		t.Errorf("Search = %v", r.Search)
	}
	if len(r.Sort) != 1 || r.Sort[0] != (query.SortField{Field: "CreatedAt", Descending: true}) {
		t.Errorf("Sort = %v", r.Sort)
	}

	empty := pagination.PageRequestFromQuery(url.Values{}, cfg)
	if empty.Search != nil {
		t.Errorf("empty Search = %v, want nil", empty.Search)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{"empty", 0, 25, 1},
		{"exact", 50, 25, 2},
		{"remainder", 51, 25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.NewPageResult[string](nil, tt.total, 1, tt.pageSize)
			if r.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", r.TotalPages, tt.wantPages)
			}
			if r.Data == nil {
				t.Error("Data is nil, want empty slice")
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"string", `{"sort":"Barcode,-CreatedAt"}`, 2},
		{"array", `{"sort":[{"Field":"Barcode","Descending":true}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r pagination.PageRequest
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if len(r.Sort) != tt.want {
				t.Errorf("len(Sort) = %d, want %d", len(r.Sort), tt.want)
			}
		})
	}
}
