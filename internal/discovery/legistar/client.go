package legistar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"civicintel/internal/services"
)

const userAgent = "CivicIntel/1.0 (housing policy research)"

// Body is a legislative body (committee, council, board).
type Body struct {
	ID       int
	Name     string
	TypeName string
}

// Vote is one member's vote on an agenda item.
type Vote struct {
	PersonName string
	Value      string
}

// EventItem is one agenda item of an event.
type EventItem struct {
	ID           int
	Title        string
	ActionText   string
	MatterID     int
	MatterName   string
	MatterType   string
	MatterStatus string
	Votes        []Vote
}

// Event is a meeting event from the Legistar Web API.
type Event struct {
	ID            int
	BodyID        int
	BodyName      string
	Date          string
	Time          string
	Location      string
	VideoURL      string
	AgendaURL     string
	MinutesURL    string
	AgendaStatus  string
	MinutesStatus string
	Items         []EventItem
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

// WithSleeper replaces the rate-limit sleep (primarily for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// Client talks to the Legistar Web API for one client (city). The API is
// free and keyless for read access; the rate delay after every request
// keeps usage polite.
type Client struct {
	baseURL   string
	client    string
	pageSize  int
	rateDelay time.Duration
	http      *http.Client
	sleep     func(time.Duration)
}

// NewClient builds a Legistar API client. client is the Legistar tenant
// name, e.g. "denver".
func NewClient(baseURL, client string, pageSize int, rateDelay time.Duration, timeout time.Duration, opts ...Option) (*Client, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return nil, services.Wrap(services.ErrConfiguration, "legistar", "new", "client name required", nil)
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://webapi.legistar.com/v1"
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if rateDelay < 0 {
		rateDelay = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/") + "/" + client,
		client:    client,
		pageSize:  pageSize,
		rateDelay: rateDelay,
		http:      &http.Client{Timeout: timeout},
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClientName returns the Legistar tenant name.
func (c *Client) ClientName() string {
	return c.client
}

// Bodies fetches all legislative bodies for this client.
func (c *Client) Bodies(ctx context.Context) ([]Body, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, "/bodies", nil, &raw); err != nil {
		return nil, err
	}
	bodies := make([]Body, 0, len(raw))
	for _, item := range raw {
		bodies = append(bodies, Body{
			ID:       intField(item, "BodyId"),
			Name:     strField(item, "BodyName"),
			TypeName: strField(item, "BodyTypeName"),
		})
	}
	return bodies, nil
}

// Events fetches all events on or after since, newest first, walking every
// page of the result set.
func (c *Client) Events(ctx context.Context, since time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("EventDate ge datetime'%s'", since.Format("2006-01-02")))
	params.Set("$orderby", "EventDate desc")

	raw, err := c.getPaginated(ctx, "/events", params)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(raw))
	for _, item := range raw {
		event := parseEvent(item)
		if event.ID == 0 {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// EventDetail fetches a single event with its agenda items and per-item
// votes. Vote fetch failures degrade to items without votes.
func (c *Client) EventDetail(ctx context.Context, eventID int) (Event, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/events/%d", eventID), nil, &raw); err != nil {
		return Event{}, err
	}
	event := parseEvent(raw)
	if event.ID == 0 {
		return Event{}, services.Wrap(services.ErrNotFound, "legistar", "event detail", strconv.Itoa(eventID), nil)
	}

	items, err := c.EventItems(ctx, eventID)
	if err != nil {
		return event, nil
	}
	for i := range items {
		votes, err := c.Votes(ctx, eventID, items[i].ID)
		if err != nil {
			continue
		}
		items[i].Votes = votes
	}
	event.Items = items
	return event, nil
}

// EventItems fetches the agenda items for an event.
func (c *Client) EventItems(ctx context.Context, eventID int) ([]EventItem, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/events/%d/eventitems", eventID), nil, &raw); err != nil {
		return nil, err
	}
	items := make([]EventItem, 0, len(raw))
	for _, item := range raw {
		items = append(items, EventItem{
			ID:           intField(item, "EventItemId"),
			Title:        strField(item, "EventItemTitle"),
			ActionText:   strField(item, "EventItemActionText"),
			MatterID:     intField(item, "EventItemMatterId"),
			MatterName:   strField(item, "EventItemMatterName"),
			MatterType:   strField(item, "EventItemMatterType"),
			MatterStatus: strField(item, "EventItemMatterStatus"),
		})
	}
	return items, nil
}

// Votes fetches the vote records for one agenda item.
func (c *Client) Votes(ctx context.Context, eventID, eventItemID int) ([]Vote, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/events/%d/eventitems/%d/votes", eventID, eventItemID), nil, &raw); err != nil {
		return nil, err
	}
	votes := make([]Vote, 0, len(raw))
	for _, item := range raw {
		votes = append(votes, Vote{
			PersonName: strField(item, "VotePersonName"),
			Value:      strField(item, "VoteValueName"),
		})
	}
	return votes, nil
}

// Matter fetches legislation details for a matter.
func (c *Client) Matter(ctx context.Context, matterID int) (map[string]any, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/matters/%d", matterID), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// MatterAttachments fetches bill text and staff report attachments for a
// matter.
func (c *Client) MatterAttachments(ctx context.Context, matterID int) ([]map[string]any, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/matters/%d/attachments", matterID), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func parseEvent(item map[string]any) Event {
	date := strField(item, "EventDate")
	if idx := strings.Index(date, "T"); idx > 0 {
		date = date[:idx]
	}
	return Event{
		ID:            intField(item, "EventId"),
		BodyID:        intField(item, "EventBodyId"),
		BodyName:      strField(item, "EventBodyName"),
		Date:          date,
		Time:          strField(item, "EventTime"),
		Location:      strField(item, "EventLocation"),
		VideoURL:      strField(item, "EventVideoPath"),
		AgendaURL:     strField(item, "EventAgendaFile"),
		MinutesURL:    strField(item, "EventMinutesFile"),
		AgendaStatus:  strField(item, "EventAgendaStatusName"),
		MinutesStatus: strField(item, "EventMinutesStatusName"),
	}
}

func (c *Client) getPaginated(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	var all []map[string]any
	skip := 0
	for {
		page := url.Values{}
		for key, values := range params {
			page[key] = values
		}
		page.Set("$top", strconv.Itoa(c.pageSize))
		page.Set("$skip", strconv.Itoa(skip))

		var batch []map[string]any
		if err := c.getJSON(ctx, endpoint, page, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
		skip += c.pageSize
	}
	return all, nil
}

// getJSON performs one API request and sleeps the rate delay afterwards,
// success or failure, so bursts never hit the shared public API.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "legistar", "request", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if c.rateDelay > 0 {
		c.sleep(c.rateDelay)
	}
	if err != nil {
		return services.Wrap(services.ErrTransient, "legistar", "request", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return services.Wrap(services.ErrTransient, "legistar", "read response", endpoint, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "legistar", "request", endpoint, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "legistar", "request",
			fmt.Sprintf("%s: status %d", endpoint, resp.StatusCode), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrTransient, "legistar", "decode response", endpoint, err)
	}
	return nil
}

func strField(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}

func intField(item map[string]any, key string) int {
	if v, ok := item[key].(float64); ok {
		return int(v)
	}
	return 0
}
