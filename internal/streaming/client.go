// Package streaming fetches playlist metadata from the streaming service
// using the client-credentials flow. The bearer token is cached and
// refreshed shortly before it expires.
package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
)

type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(baseURL, tokenURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: constants.StreamingHTTPTimeout,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid bearer token, refreshing it when absent or within
// the final second of its expires_in window.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-constants.TokenExpiryMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

type playlistResponse struct {
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type tracksResponse struct {
	Items []struct {
		Track struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
		} `json:"track"`
	} `json:"items"`
	Total int `json:"total"`
}

// GetPlaylistTotal returns the number of tracks in a playlist.
func (c *Client) GetPlaylistTotal(ctx context.Context, playlistID string) (int, error) {
	u := fmt.Sprintf("%s/playlists/%s?fields=tracks.total", c.baseURL, url.PathEscape(playlistID))

	var result playlistResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return 0, err
	}
	return result.Tracks.Total, nil
}

// GetPlaylistTracks returns one page of playlist tracks as Songs. Callers
// should page with limit = constants.PlaylistPageSize, the API's maximum.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string, offset, limit int) ([]domain.Song, error) {
	u := fmt.Sprintf("%s/playlists/%s/tracks?offset=%d&limit=%d", c.baseURL, url.PathEscape(playlistID), offset, limit)

	var result tracksResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	songs := make([]domain.Song, 0, len(result.Items))
	for _, item := range result.Items {
		track := item.Track
		if track.Name == "" || len(track.Artists) == 0 {
			continue
		}
		songs = append(songs, domain.Song{
			Artist:             track.Artists[0].Name,
			Title:              track.Name,
			SpotifyURL:         track.ExternalURLs.Spotify,
			CurrentReleaseDate: track.Album.ReleaseDate,
		})
	}
	return songs, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("streaming API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
