// Package dto defines the request and response shapes of the HTTP API and
// their validation.
package dto

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/cesargomez89/yearspin/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

var dateRegex = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)

func validateSong(field string, song *domain.Song) []ValidationError {
	var errs []ValidationError
	if song.Artist == "" {
		errs = append(errs, ValidationError{Field: field + ".artist", Message: "is required"})
	}
	if song.Title == "" {
		errs = append(errs, ValidationError{Field: field + ".title", Message: "is required"})
	}
	if song.CurrentReleaseDate != "" && !dateRegex.MatchString(song.CurrentReleaseDate) {
		errs = append(errs, ValidationError{Field: field + ".currentReleaseDate", Message: "invalid date format (expected: YYYY or YYYY-MM or YYYY-MM-DD)"})
	}
	if song.SpotifyURL != "" {
		if _, err := url.ParseRequestURI(song.SpotifyURL); err != nil {
			errs = append(errs, ValidationError{Field: field + ".spotifyUrl", Message: "invalid URL format"})
		}
	}
	return errs
}

func indexedField(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
