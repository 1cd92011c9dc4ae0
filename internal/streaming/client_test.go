package streaming

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestServers returns a token server and an API server wired to count
// token requests.
func newTestServers(t *testing.T, apiHandler http.HandlerFunc) (*Client, *int) {
	t.Helper()

	tokenRequests := 0
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("id:secret"))
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("token Authorization = %q, want %q", got, wantAuth)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}

		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, tokenRequests)
	}))
	t.Cleanup(tokenServer.Close)

	apiServer := httptest.NewServer(apiHandler)
	t.Cleanup(apiServer.Close)

	return NewClient(apiServer.URL, tokenServer.URL, "id", "secret"), &tokenRequests
}

func TestGetPlaylistTotal(t *testing.T) {
	c, tokenRequests := newTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/playlists/abc123") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		_, _ = w.Write([]byte(`{"tracks":{"total":137}}`))
	})

	total, err := c.GetPlaylistTotal(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetPlaylistTotal failed: %v", err)
	}
	if total != 137 {
		t.Errorf("total = %d, want 137", total)
	}
	if *tokenRequests != 1 {
		t.Errorf("token requests = %d, want 1", *tokenRequests)
	}
}

func TestGetPlaylistTracks(t *testing.T) {
	c, _ := newTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q, want 50", got)
		}
		if got := r.URL.Query().Get("offset"); got != "100" {
			t.Errorf("offset = %q, want 100", got)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"track":{"name":"Hook","artists":[{"name":"Blues Traveler"}],"album":{"release_date":"1994-09-13"},"external_urls":{"spotify":"https://open.spotify.com/track/x"}}},
			{"track":{"name":"","artists":[{"name":"Ghost"}]}},
			{"track":{"name":"Run-Around","artists":[{"name":"Blues Traveler"}],"album":{"release_date":"1994"},"external_urls":{"spotify":"https://open.spotify.com/track/y"}}}
		],"total":137}`))
	})

	songs, err := c.GetPlaylistTracks(context.Background(), "abc123", 100, 50)
	if err != nil {
		t.Fatalf("GetPlaylistTracks failed: %v", err)
	}

	// The unnamed track is dropped.
	if len(songs) != 2 {
		t.Fatalf("got %d songs, want 2", len(songs))
	}
	if songs[0].Artist != "Blues Traveler" || songs[0].Title != "Hook" {
		t.Errorf("unexpected first song: %+v", songs[0])
	}
	if songs[0].CurrentReleaseDate != "1994-09-13" {
		t.Errorf("CurrentReleaseDate = %q", songs[0].CurrentReleaseDate)
	}
	if songs[1].CurrentReleaseDate != "1994" {
		t.Errorf("partial release date lost: %q", songs[1].CurrentReleaseDate)
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	c, tokenRequests := newTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"total":1}}`))
	})

	for i := 0; i < 3; i++ {
		if _, err := c.GetPlaylistTotal(context.Background(), "abc"); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	if *tokenRequests != 1 {
		t.Errorf("token requests = %d, want 1 (cached)", *tokenRequests)
	}
}

func TestTokenRefreshedNearExpiry(t *testing.T) {
	c, tokenRequests := newTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"total":1}}`))
	})

	if _, err := c.GetPlaylistTotal(context.Background(), "abc"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	// Simulate a token within the final second of its window.
	c.tokenMu.Lock()
	c.tokenExpiry = time.Now().Add(500 * time.Millisecond)
	c.tokenMu.Unlock()

	if _, err := c.GetPlaylistTotal(context.Background(), "abc"); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if *tokenRequests != 2 {
		t.Errorf("token requests = %d, want 2 (refreshed)", *tokenRequests)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	c, _ := newTestServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":404,"message":"Not found."}}`))
	})

	_, err := c.GetPlaylistTotal(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q missing status", err)
	}
}
