package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"
)

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ts.URL, "https://catalog.example", "test-token")
}

func TestSearchSendsAuthAndParams(t *testing.T) {
	var gotAuth, gotQuery, gotType, gotSort, gotOrder, gotPerPage string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotSort = r.URL.Query().Get("sort")
		gotOrder = r.URL.Query().Get("sort_order")
		gotPerPage = r.URL.Query().Get("per_page")
		_, _ = w.Write([]byte(`{"results":[{"id":7,"title":"Blues Traveler - Hook","year":"1994","format":"Album"}]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 0

	results, err := c.Search(context.Background(), "blues traveler hook", SearchOptions{
		Type:    "master",
		PerPage: 10,
		Sort:    "year,asc",
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotAuth != "Discogs token=test-token" {
		t.Errorf("Authorization = %q, want Discogs token", gotAuth)
	}
	if gotQuery != "blues traveler hook" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotType != "master" || gotSort != "year" || gotOrder != "asc" || gotPerPage != "10" {
		t.Errorf("params = type %q sort %q order %q per_page %q", gotType, gotSort, gotOrder, gotPerPage)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID != 7 || results[0].Title != "Blues Traveler - Hook" || results[0].Year != "1994" {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestGetMaster(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/masters/42" {
			t.Errorf("path = %s, want /masters/42", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":42,"title":"Four","year":1994,"main_release":1001}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 0

	master, err := c.GetMaster(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetMaster failed: %v", err)
	}
	if master.MainReleaseID != 1001 {
		t.Errorf("MainReleaseID = %d, want 1001", master.MainReleaseID)
	}
	if master.Year != 1994 {
		t.Errorf("Year = %d, want 1994", master.Year)
	}
}

func TestGetRelease(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/1001" {
			t.Errorf("path = %s, want /releases/1001", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":1001,"title":"Four","released":"1994-09-13","formats":[{"name":"CD","descriptions":["Album"]}]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 0

	release, err := c.GetRelease(context.Background(), 1001)
	if err != nil {
		t.Fatalf("GetRelease failed: %v", err)
	}
	if release.Released != "1994-09-13" {
		t.Errorf("Released = %q", release.Released)
	}
	if len(release.Formats) != 1 || release.Formats[0].Descriptions[0] != "Album" {
		t.Errorf("unexpected formats: %+v", release.Formats)
	}
}

func TestNon2xxReturnsAPIErrorWithoutRetry(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limit"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 0

	_, err := c.Search(context.Background(), "anything", SearchOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", apiErr.Status)
	}
	if requests != 1 {
		t.Errorf("made %d requests, want 1 (no retry)", requests)
	}
}

func TestMasterURL(t *testing.T) {
	c := NewClient("https://api.example", "https://catalog.example/", "tok")
	if got := c.MasterURL(42); got != "https://catalog.example/master/42" {
		t.Errorf("MasterURL = %q", got)
	}
}

func TestConcurrentRateGate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rate gate test in short mode")
	}

	var mu sync.Mutex
	var timestamps []time.Time

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		timestamps = append(timestamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 200 * time.Millisecond // scaled down to keep the test fast

	numRequests := 5
	var wg sync.WaitGroup
	wg.Add(numRequests)
	ready := make(chan struct{})

	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()
			<-ready
			if _, err := c.Search(context.Background(), "x", SearchOptions{}); err != nil {
				t.Errorf("Search failed: %v", err)
			}
		}()
	}

	close(ready)
	wg.Wait()

	if len(timestamps) != numRequests {
		t.Fatalf("expected %d requests, got %d", numRequests, len(timestamps))
	}

	sort.SliceStable(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})

	// Allow a little scheduler slop but require the gate's spacing.
	for i := 1; i < len(timestamps); i++ {
		diff := timestamps[i].Sub(timestamps[i-1])
		if diff < c.minInterval-20*time.Millisecond {
			t.Errorf("requests %d and %d separated by %v, expected >= ~%v", i-1, i, diff, c.minInterval)
		}
	}
}

func TestGateRespectsContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.minInterval = 5 * time.Second
	c.lastRequest = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "x", SearchOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error, got %v", err)
	}
}
