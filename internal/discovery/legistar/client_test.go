package legistar_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"civicintel/internal/discovery/legistar"
	"civicintel/internal/services"
)

func newTestClient(t *testing.T, server *httptest.Server, pageSize int, delay time.Duration, slept *[]time.Duration) *legistar.Client {
	t.Helper()
	client, err := legistar.NewClient(server.URL, "denver", pageSize, delay, time.Minute,
		legistar.WithSleeper(func(d time.Duration) {
			if slept != nil {
				*slept = append(*slept, d)
			}
		}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestEventsPaginatesAndParses(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/denver/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		queries = append(queries, r.URL.RawQuery)

		skip, _ := strconv.Atoi(r.URL.Query().Get("$skip"))
		var page []map[string]any
		if skip == 0 {
			page = []map[string]any{
				{"EventId": float64(1001), "EventBodyName": "City Council", "EventDate": "2024-05-06T00:00:00", "EventVideoPath": "https://video/1001", "EventAgendaFile": "https://agenda/1001.pdf"},
				{"EventId": float64(1002), "EventBodyName": "Planning Board", "EventDate": "2024-05-01T00:00:00"},
			}
		} else {
			page = []map[string]any{
				{"EventId": float64(1003), "EventBodyName": "Finance Committee", "EventDate": "2024-04-20T00:00:00"},
			}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(t, server, 2, time.Second, &slept)

	since := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	events, err := client.Events(context.Background(), since)
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 across two pages", len(events))
	}
	if events[0].ID != 1001 || events[0].Date != "2024-05-06" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[0].AgendaURL != "https://agenda/1001.pdf" {
		t.Errorf("agenda url = %q", events[0].AgendaURL)
	}

	if len(queries) != 2 {
		t.Fatalf("made %d requests, want 2", len(queries))
	}
	first, err := http.NewRequest(http.MethodGet, "/?"+queries[0], nil)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	q := first.URL.Query()
	if q.Get("$filter") != "EventDate ge datetime'2024-04-01'" {
		t.Errorf("$filter = %q", q.Get("$filter"))
	}
	if q.Get("$orderby") != "EventDate desc" {
		t.Errorf("$orderby = %q", q.Get("$orderby"))
	}
	if q.Get("$top") != "2" || q.Get("$skip") != "0" {
		t.Errorf("paging params = top %q skip %q", q.Get("$top"), q.Get("$skip"))
	}

	if len(slept) != 2 {
		t.Errorf("rate delay applied %d times, want once per request", len(slept))
	}
}

func TestEventDetailEnrichesItemsAndVotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/denver/events/1381438":
			json.NewEncoder(w).Encode(map[string]any{
				"EventId": float64(1381438), "EventBodyName": "Community Planning and Housing",
				"EventDate": "2024-06-01T00:00:00", "EventLocation": "Council Chambers",
			})
		case "/denver/events/1381438/eventitems":
			json.NewEncoder(w).Encode([]map[string]any{
				{"EventItemId": float64(5), "EventItemTitle": "Affordable housing rezoning", "EventItemMatterId": float64(77), "EventItemMatterType": "Ordinance"},
			})
		case "/denver/events/1381438/eventitems/5/votes":
			json.NewEncoder(w).Encode([]map[string]any{
				{"VotePersonName": "Alvarez", "VoteValueName": "Aye"},
				{"VotePersonName": "Chen", "VoteValueName": "Aye"},
				{"VotePersonName": "Ortiz", "VoteValueName": "Nay"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, 100, 0, nil)
	event, err := client.EventDetail(context.Background(), 1381438)
	if err != nil {
		t.Fatalf("EventDetail returned error: %v", err)
	}
	if len(event.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(event.Items))
	}
	item := event.Items[0]
	if item.MatterID != 77 || item.MatterType != "Ordinance" {
		t.Errorf("item = %+v", item)
	}
	if len(item.Votes) != 3 {
		t.Fatalf("votes = %d, want 3", len(item.Votes))
	}
	if got := legistar.SummarizeVotes(item.Votes); got != "Aye: 2, Nay: 1" {
		t.Errorf("vote summary = %q", got)
	}
}

func TestEventDetailVoteFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/denver/events/9":
			json.NewEncoder(w).Encode(map[string]any{"EventId": float64(9), "EventBodyName": "City Council"})
		case "/denver/events/9/eventitems":
			json.NewEncoder(w).Encode([]map[string]any{{"EventItemId": float64(1), "EventItemTitle": "Item"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, 100, 0, nil)
	event, err := client.EventDetail(context.Background(), 9)
	if err != nil {
		t.Fatalf("EventDetail returned error: %v", err)
	}
	if len(event.Items) != 1 || event.Items[0].Votes != nil {
		t.Errorf("expected item without votes, got %+v", event.Items)
	}
}

func TestBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/denver/bodies" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"BodyId": float64(10), "BodyName": "City Council", "BodyTypeName": "Council"},
			{"BodyId": float64(11), "BodyName": "Community Planning and Housing", "BodyTypeName": "Committee"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server, 100, 0, nil)
	bodies, err := client.Bodies(context.Background())
	if err != nil {
		t.Fatalf("Bodies returned error: %v", err)
	}
	if len(bodies) != 2 || bodies[1].Name != "Community Planning and Housing" {
		t.Errorf("bodies = %+v", bodies)
	}
}

func TestNotFoundIsTagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer server.Close()

	client := newTestClient(t, server, 100, 0, nil)
	_, err := client.EventDetail(context.Background(), 404404)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRateDelayAppliesOnFailureToo(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(t, server, 100, 2*time.Second, &slept)
	if _, err := client.Bodies(context.Background()); err == nil {
		t.Fatal("expected error from 503")
	}
	if fmt.Sprint(slept) != fmt.Sprint([]time.Duration{2 * time.Second}) {
		t.Errorf("slept = %v, want one delay after the failed request", slept)
	}
	_ = hits
}
