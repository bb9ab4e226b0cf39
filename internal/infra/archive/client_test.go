package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/tapedeck/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, baseURL string, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()

	c := NewClient(Config{
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
		MaxRetries:        maxRetries,
		Timeout:           5 * time.Second,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
	}, testLogger())

	// Record backoff waits instead of sleeping them out.
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

const showJSON = `{
	"metadata": {"identifier": "gd1977-05-08", "title": "Barton Hall", "date": "1977-05-08", "venue": "Barton Hall"},
	"files": [{"name": "track01.mp3", "format": "VBR MP3", "title": "New Minglewood Blues", "length": "5:23"}]
}`

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "upstream busy", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, showJSON)
	}))
	defer srv.Close()

	c, waits := testClient(t, srv.URL, 3)

	show, err := c.Metadata(context.Background(), "gd1977-05-08")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if show.Metadata.Identifier != "gd1977-05-08" {
		t.Errorf("identifier = %q, want gd1977-05-08", show.Metadata.Identifier)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream saw %d requests, want 3", got)
	}

	wantWaits := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(*waits) != len(wantWaits) {
		t.Fatalf("recorded %d backoff waits, want %d", len(*waits), len(wantWaits))
	}
	for i, want := range wantWaits {
		if (*waits)[i] != want {
			t.Errorf("wait %d = %v, want %v", i, (*waits)[i], want)
		}
	}
}

func TestClientDoesNotRetryClientFaults(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such item", http.StatusNotFound)
	}))
	defer srv.Close()

	c, waits := testClient(t, srv.URL, 3)

	_, err := c.Metadata(context.Background(), "missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", statusErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream saw %d requests, want 1", got)
	}
	if len(*waits) != 0 {
		t.Errorf("recorded %d backoff waits, want 0", len(*waits))
	}
}

func TestClientDoesNotRetryDecodeFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, "<html>definitely not json</html>")
	}))
	defer srv.Close()

	c, _ := testClient(t, srv.URL, 3)

	_, err := c.Metadata(context.Background(), "gd1977-05-08")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream saw %d requests, want 1", got)
	}
}

func TestClientSurfacesExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "still busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv.URL, 2)

	_, err := c.Metadata(context.Background(), "gd1977-05-08")
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("last cause = %v, want 503 StatusError", exhausted.Err)
	}
	// Initial attempt plus two retries.
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream saw %d requests, want 3", got)
	}
}

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("q"); got != "collection:GratefulDead" {
			t.Errorf("q = %q", got)
		}
		if got := q.Get("rows"); got != "5" {
			t.Errorf("rows = %q", got)
		}
		if got := q["fl[]"]; len(got) != 2 || got[0] != "identifier" || got[1] != "title" {
			t.Errorf("fl[] = %v", got)
		}
		if got := q.Get("output"); got != "json" {
			t.Errorf("output = %q", got)
		}
		_, _ = io.WriteString(w, `{"response": {"numFound": 2, "docs": [
			{"identifier": "gd1977-05-08", "title": "Barton Hall"},
			{"identifier": "gd1972-05-03", "title": ["Olympia Theatre"]}
		]}}`)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv.URL, 3)

	result, err := c.Search(context.Background(), "collection:GratefulDead", []string{"identifier", "title"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Response.NumFound != 2 {
		t.Errorf("NumFound = %d, want 2", result.Response.NumFound)
	}
	if len(result.Response.Docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(result.Response.Docs))
	}
	if got := result.Response.Docs[0].Identifier(); got != "gd1977-05-08" {
		t.Errorf("doc 0 identifier = %q", got)
	}
	// List-valued fields resolve to their first element.
	if got := result.Response.Docs[1].Field("title"); got != "Olympia Theatre" {
		t.Errorf("doc 1 title = %q", got)
	}
}

// stubCache is an in-memory Cache for read-through tests.
type stubCache struct {
	shows map[string]*domain.Show
	sets  int
}

func (s *stubCache) GetShow(_ context.Context, id string) (*domain.Show, bool) {
	show, ok := s.shows[id]
	return show, ok
}

func (s *stubCache) SetShow(_ context.Context, id string, show *domain.Show) {
	s.shows[id] = show
	s.sets++
}

func TestClientMetadataReadsThroughCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, showJSON)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv.URL, 3)
	cache := &stubCache{shows: make(map[string]*domain.Show)}
	c.SetCache(cache)

	first, err := c.Metadata(context.Background(), "gd1977-05-08")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	second, err := c.Metadata(context.Background(), "gd1977-05-08")
	if err != nil {
		t.Fatalf("Metadata (cached): %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream saw %d requests, want 1 (second call should hit cache)", got)
	}
	if second.Metadata.Title != first.Metadata.Title {
		t.Errorf("cached title = %q, want %q", second.Metadata.Title, first.Metadata.Title)
	}
}
