package gdrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidsphere/internal/pkg/errors"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// fakeDrive serves the few Drive v3 endpoints the client touches.
type fakeDrive struct {
	files   map[string]string // name -> id
	bodies  map[string]string // id -> content
	deleted []string
	queries []string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/files":
		q := r.URL.Query().Get("q")
		f.queries = append(f.queries, q)
		var out struct {
			Files []map[string]string `json:"files"`
		}
		out.Files = []map[string]string{}
		for name, id := range f.files {
			if strings.Contains(q, "name = '"+name+"'") {
				out.Files = append(out.Files, map[string]string{"id": id, "name": name})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
		id := strings.TrimPrefix(r.URL.Path, "/files/")
		body, ok := f.bodies[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, body)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/files/"):
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/files/"))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestClient(t *testing.T, fd *fakeDrive) *Client {
	t.Helper()
	srv := httptest.NewServer(fd)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("drive.NewService() error = %v", err)
	}
	return NewClient(svc, "folder-1")
}

func TestGetAndDeleteResolveByName(t *testing.T) {
	key := "vidsphere/u1/video/j1/source.mp4"
	fd := &fakeDrive{
		files:  map[string]string{key: "file-9"},
		bodies: map[string]string{"file-9": "raw"},
	}
	c := newTestClient(t, fd)
	ctx := context.Background()

	rc, ct, _, err := c.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "raw" || ct != "video/mp4" {
		t.Fatalf("unexpected object %q (%s)", body, ct)
	}
	if !strings.Contains(fd.queries[0], "'folder-1' in parents") {
		t.Fatalf("lookup not scoped to folder: %q", fd.queries[0])
	}

	if err := c.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}
	if len(fd.deleted) != 1 || fd.deleted[0] != "file-9" {
		t.Fatalf("deleted = %v", fd.deleted)
	}
}

func TestMissingObjectIsNotFound(t *testing.T) {
	c := newTestClient(t, &fakeDrive{files: map[string]string{}, bodies: map[string]string{}})

	if _, _, _, err := c.GetObject(context.Background(), "a/b/video/c/d.mp4"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.DeleteObject(context.Background(), "a/b/video/c/d.mp4"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery(`it's`); got != `it\'s` {
		t.Fatalf("escapeQuery() = %q", got)
	}
}
