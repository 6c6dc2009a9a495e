package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/courier/pkg/module"
)

func TestNewPrefixValidation(t *testing.T) {
	tests := []struct {
		prefix    string
		wantPanic bool
	}{
		{"/api", false},
		{"/docs", false},
		{"", true},
		{"api", true},
		{"/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()
			m := module.New(tt.prefix, http.NewServeMux())
			if m.Prefix() != tt.prefix {
				t.Errorf("Prefix() = %q", m.Prefix())
			}
		})
	}
}

func TestRouter(t *testing.T) {
	var innerPath string
	api := http.NewServeMux()
	api.HandleFunc("GET /documents/{barcode}", func(w http.ResponseWriter, r *http.Request) {
		innerPath = r.URL.Path
		w.Write([]byte(r.PathValue("barcode")))
	})
	api.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		innerPath = r.URL.Path
		w.Write([]byte("root"))
	})

	var order []string
	m := module.New("/api", api)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "module")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "router")
			next.ServeHTTP(w, r)
		})
	})
	router.Mount(m)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name      string
		path      string
		wantBody  string
		wantInner string
		wantOrder int
	}{
		{"module route", "/api/documents/IN-2025-007", "IN-2025-007", "/documents/IN-2025-007", 2},
		{"trailing slash", "/api/documents/IN-2025-007/", "IN-2025-007", "/documents/IN-2025-007", 2},
		{"module root", "/api", "root", "/", 2},
		{"native", "/healthz", "ok", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			innerPath, order = "", nil
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if innerPath != tt.wantInner {
				t.Errorf("inner path = %q, want %q", innerPath, tt.wantInner)
			}
			if len(order) != tt.wantOrder || order[0] != "router" {
				t.Errorf("middleware order = %v", order)
			}
		})
	}
}
