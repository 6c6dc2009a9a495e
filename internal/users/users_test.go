package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/storage"
)

func newDirectory(t *testing.T) (*users.Memory, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory("correspondence")
	return users.NewMemory(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func mustCreate(t *testing.T, m *users.Memory, name, role string) *users.User {
	t.Helper()
	u, err := m.Create(context.Background(), users.CreateCommand{Name: name, Email: name + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}
	return u
}

func TestCreate(t *testing.T) {
	m, _ := newDirectory(t)
	ctx := context.Background()

	u, err := m.Create(ctx, users.CreateCommand{Name: " Layla ", Email: "Layla@Example.com", Role: "Manager"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Name != "Layla" || u.Email != "layla@example.com" || u.Role != "manager" {
		t.Errorf("normalized user = %+v", u)
	}

	if _, err := m.Create(ctx, users.CreateCommand{Name: "Other", Email: "layla@example.com", Role: "clerk"}); !errors.Is(err, users.ErrDuplicate) {
		t.Errorf("duplicate email error = %v", err)
	}
	if _, err := m.Create(ctx, users.CreateCommand{Name: "x"}); !errors.Is(err, users.ErrInvalidUser) {
		t.Errorf("incomplete user error = %v", err)
	}
}

func TestManagers(t *testing.T) {
	m, _ := newDirectory(t)
	mustCreate(t, m, "zaid", "supervisor")
	mustCreate(t, m, "clerk", "clerk")
	mustCreate(t, m, "amal", "admin")
	mustCreate(t, m, "huda", "manager")

	managers, err := m.Managers(context.Background())
	if err != nil {
		t.Fatalf("Managers() error = %v", err)
	}

	var names []string
	for _, u := range managers {
		names = append(names, u.Name)
	}
	want := []string{"amal", "huda", "zaid"}
	if len(names) != len(want) {
		t.Fatalf("Managers() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Managers()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestAssetKey(t *testing.T) {
	m, _ := newDirectory(t)
	u := mustCreate(t, m, "huda", "manager")

	if u.AssetKey(users.AssetSignature) != "" {
		t.Error("new user has a signature")
	}

	updated, err := m.SetAsset(context.Background(), u.ID, users.AssetStamp, "assets/x/stamp.png")
	if err != nil {
		t.Fatalf("SetAsset() error = %v", err)
	}
	if updated.AssetKey(users.AssetStamp) != "assets/x/stamp.png" || updated.AssetKey(users.AssetSignature) != "" {
		t.Errorf("assets = %v / %v", updated.StampKey, updated.SignatureKey)
	}

	if _, err := m.SetAsset(context.Background(), uuid.New(), users.AssetStamp, "k"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("SetAsset() unknown user error = %v", err)
	}
}

func TestParseAssetKind(t *testing.T) {
	if k, err := users.ParseAssetKind("stamp"); err != nil || k != users.AssetStamp {
		t.Errorf("ParseAssetKind(stamp) = %s, %v", k, err)
	}
	if _, err := users.ParseAssetKind("seal"); !errors.Is(err, users.ErrInvalidAsset) {
		t.Errorf("ParseAssetKind(seal) error = %v", err)
	}
}

func serve(t *testing.T, h *users.Handler, req *http.Request, session *auth.Session) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	g := h.Routes()
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+g.Prefix+r.Pattern, r.Handler)
	}
	if session != nil {
		req = req.WithContext(auth.WithSession(req.Context(), *session))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func assetUpload(t *testing.T, path string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "sig.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("\x89PNG fake"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerSetAsset(t *testing.T) {
	m, store := newDirectory(t)
	manager := mustCreate(t, m, "huda", "manager")
	other := mustCreate(t, m, "clerk", "clerk")
	h := m.Handler(1 << 20)
	path := "/users/" + manager.ID.String() + "/assets/signature"

	tests := []struct {
		name    string
		path    string
		session *auth.Session
		want    int
	}{
		{"no session", path, nil, http.StatusUnauthorized},
		{"other user", path, &auth.Session{UserID: other.ID.String(), Role: "clerk"}, http.StatusForbidden},
		{"bad kind", "/users/" + manager.ID.String() + "/assets/seal", &auth.Session{UserID: manager.ID.String()}, http.StatusBadRequest},
		{"self", path, &auth.Session{UserID: manager.ID.String(), Role: "manager"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, assetUpload(t, tt.path), tt.session)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	u, _ := m.Find(context.Background(), manager.ID)
	key := u.AssetKey(users.AssetSignature)
	if key != "assets/"+manager.ID.String()+"/signature.png" {
		t.Errorf("signature key = %q", key)
	}
	if ok, _ := store.Exists(context.Background(), key); !ok {
		t.Error("asset blob not stored")
	}
}

func TestHandlerMe(t *testing.T) {
	m, _ := newDirectory(t)
	u := mustCreate(t, m, "huda", "manager")

	rec := serve(t, m.Handler(1<<20), httptest.NewRequest(http.MethodGet, "/users/me", nil), &auth.Session{UserID: u.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got users.User
	json.NewDecoder(rec.Body).Decode(&got)
	if got.ID != u.ID {
		t.Errorf("me = %+v", got)
	}

	rec = serve(t, m.Handler(1<<20), httptest.NewRequest(http.MethodGet, "/users/me", nil), &auth.Session{UserID: uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}
