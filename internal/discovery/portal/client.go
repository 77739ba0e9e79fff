package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"civicintel/internal/services"
)

const userAgent = "CivicIntel/1.0 (housing policy research)"

// Clip is one recording listed on a portal site.
type Clip struct {
	ID         string
	Title      string
	Date       string
	Duration   int // seconds
	VideoURL   string
	AgendaURL  string
	MinutesURL string
	BodyName   string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client talks to one portal site. Sites expose either a JSON clips API
// or an HTML listing page; the client tries the API first and scrapes
// the listing when the API is absent.
type Client struct {
	site string
	http *http.Client
}

// NewClient builds a client for a portal site host (e.g.
// "boulder.granicus.com").
func NewClient(site string, opts ...Option) (*Client, error) {
	site = strings.TrimSpace(strings.TrimSuffix(site, "/"))
	site = strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://")
	if site == "" {
		return nil, services.Wrap(services.ErrConfiguration, "portal", "new", "site required", nil)
	}
	client := &Client{
		site: site,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) clipsAPIURL() string    { return "https://" + c.site + "/api/clips" }
func (c *Client) listingURL() string     { return "https://" + c.site + "/ViewPublisher.php?view_id=1" }
func (c *Client) playerURL(id string) string {
	return "https://" + c.site + "/player/clip/" + id
}

// FetchClips lists up to max clips, preferring the JSON API over HTML
// scraping.
func (c *Client) FetchClips(ctx context.Context, max int) ([]Clip, error) {
	if max <= 0 {
		max = 50
	}

	if clips, err := c.fetchFromAPI(ctx, max); err == nil {
		return clips, nil
	}

	body, err := c.get(ctx, c.listingURL(), "text/html")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "portal", "fetch clips", c.site, err)
	}
	return c.parseListing(string(body), max), nil
}

func (c *Client) fetchFromAPI(ctx context.Context, max int) ([]Clip, error) {
	body, err := c.get(ctx, c.clipsAPIURL(), "application/json")
	if err != nil {
		return nil, err
	}
	clips, err := parseClipsPayload(body, max, c.playerURL)
	if err != nil {
		return nil, err
	}
	return clips, nil
}

// parseClipsPayload handles both a bare array and an object wrapping the
// array under "clips" or "results". Field names vary across site versions,
// so each field reads its known spellings in order.
func parseClipsPayload(body []byte, max int, playerURL func(string) string) ([]Clip, error) {
	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		var wrapper map[string]any
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("parse clips payload: %w", err)
		}
		raw, ok := wrapper["clips"].([]any)
		if !ok {
			raw, ok = wrapper["results"].([]any)
		}
		if !ok {
			return nil, fmt.Errorf("clips payload has no clip array")
		}
		for _, entry := range raw {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
	}

	clips := make([]Clip, 0, len(items))
	for _, item := range items {
		if len(clips) >= max {
			break
		}
		id := firstString(item, "id", "clip_id")
		if id == "" {
			continue
		}

		date := firstString(item, "date", "start_date")
		if idx := strings.Index(date, "T"); idx > 0 {
			date = date[:idx]
		}

		videoURL := firstString(item, "video_url")
		if videoURL == "" {
			videoURL = playerURL(id)
		}

		title := firstString(item, "title", "name")
		if title == "" {
			title = "Untitled"
		}

		clips = append(clips, Clip{
			ID:         id,
			Title:      title,
			Date:       date,
			Duration:   firstInt(item, "duration"),
			VideoURL:   videoURL,
			AgendaURL:  firstString(item, "agenda_url", "agenda"),
			MinutesURL: firstString(item, "minutes_url", "minutes"),
			BodyName:   firstString(item, "body_name", "body"),
		})
	}
	return clips, nil
}

var bareClipID = regexp.MustCompile(`(?i)clip[_/](\d+)`)

// parseListing scrapes clip links from the HTML listing page. Anchors
// pointing at /player/clip/N carry titles; when the page yields no usable
// anchors, bare clip IDs anywhere in the markup become placeholder entries.
func (c *Client) parseListing(html string, max int) []Clip {
	var clips []Clip
	seen := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			m := bareClipID.FindStringSubmatch(href)
			if m == nil || !strings.Contains(href, "/player/clip/") {
				return true
			}
			id := m[1]
			if _, dup := seen[id]; dup {
				return true
			}
			title := strings.TrimSpace(sel.Text())
			if title == "" {
				title, _ = sel.Attr("title")
				title = strings.TrimSpace(title)
			}
			if title == "" {
				return true
			}
			seen[id] = struct{}{}
			clips = append(clips, Clip{
				ID:       id,
				Title:    title,
				VideoURL: c.playerURL(id),
			})
			return len(clips) < max
		})
	}
	if len(clips) > 0 {
		return clips
	}

	for _, m := range bareClipID.FindAllStringSubmatch(html, -1) {
		if len(clips) >= max {
			break
		}
		id := m[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clips = append(clips, Clip{
			ID:       id,
			Title:    fmt.Sprintf("Meeting (Clip %s)", id),
			VideoURL: c.playerURL(id),
		})
	}
	return clips
}

var mediaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"(https?://[^"]+\.mp4[^"]*)"`),
	regexp.MustCompile(`"(https?://stream\.granicus\.com/[^"]+)"`),
	regexp.MustCompile(`source\s+src="(https?://[^"]+)"`),
	regexp.MustCompile(`"mediaUrl"\s*:\s*"(https?://[^"]+)"`),
}

// ResolveVideoURL fetches a clip's player page and extracts the direct
// media URL embedded in it. When no pattern matches, the player page URL
// itself comes back so yt-dlp can take a crack at it.
func (c *Client) ResolveVideoURL(ctx context.Context, clipID string) (string, error) {
	pageURL := c.playerURL(clipID)
	body, err := c.get(ctx, pageURL, "text/html")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "portal", "resolve video", clipID, err)
	}
	for _, pat := range mediaPatterns {
		if m := pat.FindSubmatch(body); m != nil {
			return string(m[1]), nil
		}
	}
	return pageURL, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<20))
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

func firstInt(item map[string]any, keys ...string) int {
	for _, key := range keys {
		if v, ok := item[key].(float64); ok {
			return int(v)
		}
	}
	return 0
}
