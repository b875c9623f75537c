package transfer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/maheshrc27/postsync/internal/models"
)

type PublishRequest struct {
	Post      string   `json:"post"`
	Platforms []string `json:"platforms"`
}

type PublishResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ScheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

var (
	ErrMalformedPublishResponse = errors.New("publish response is not a JSON object")
	ErrPublishRejected          = errors.New("publish response reported an error status")
	ErrNoPublishURL             = errors.New("publish response carries no usable url")
	ErrNoPublishID              = errors.New("publish response carries no usable post id")
)

type platformResult struct {
	ID      json.RawMessage `json:"id"`
	URL     string          `json:"url"`
	PostURL string          `json:"postUrl"`
}

// ExtractPublishOutcome reads the destination URL and external post id out of
// a publishing API response whose shape varies per platform. The URL is taken
// from <platform>.url, <platform>.postUrl, url, postUrl in that order; the id
// from <platform>.id, id, then the URL itself (see urlID). A response that
// yields no id is rejected like one without a URL.
func ExtractPublishOutcome(platform string, body []byte) (*models.PublishOutcome, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || top == nil {
		return nil, ErrMalformedPublishResponse
	}

	if status := stringField(top, "status"); strings.EqualFold(status, "error") {
		return nil, ErrPublishRejected
	}

	var specific platformResult
	if raw, ok := top[strings.ToLower(platform)]; ok {
		// A malformed platform object falls back to the top-level fields.
		if err := json.Unmarshal(raw, &specific); err != nil {
			slog.Debug("ignoring malformed platform result", "platform", platform, "error", err)
		}
	}

	publishURL := firstUsableURL(specific.URL, specific.PostURL, stringField(top, "url"), stringField(top, "postUrl"))
	if publishURL == "" {
		return nil, ErrNoPublishURL
	}

	externalID := firstNonEmpty(rawID(specific.ID), rawID(top["id"]), urlID(publishURL))
	if externalID == "" {
		return nil, ErrNoPublishID
	}

	return &models.PublishOutcome{
		URL:        publishURL,
		ExternalID: models.ExternalID(externalID),
	}, nil
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawID accepts both string and numeric ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstUsableURL(candidates ...string) string {
	for _, c := range candidates {
		u, err := url.Parse(strings.TrimSpace(c))
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme == "http" || u.Scheme == "https" {
			return u.String()
		}
	}
	return ""
}

// idQueryParams are query parameters platforms use to carry the post id in
// permalinks such as permalink.php?story_fbid=123.
var idQueryParams = []string{"story_fbid", "fbid", "id", "v"}

// urlID derives a post id from a publish URL: an id query parameter first,
// then the last path segment unless it is empty or looks like a file name.
func urlID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range idQueryParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}

	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" || seg == "" || strings.Contains(seg, ".") {
		return ""
	}
	return seg
}
