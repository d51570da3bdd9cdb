package gcal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/service/gcal"
	"google.golang.org/api/calendar/v3"
)

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func TestBuildEvent(t *testing.T) {
	t.Run("message is appended to the title", func(t *testing.T) {
		backAt := baseTime.Add(90 * time.Minute)
		ev := gcal.BuildEvent(&model.SyncRequest{
			Status:        types.StatusFocused,
			StatusMessage: ptr("Writing the report"),
			BackAt:        &backAt,
		}, baseTime)

		gt.Value(t, ev.Summary).Equal("⚡ Deep Work: Writing the report")
		gt.Value(t, ev.Description).Equal("Status synced from Qoit - Writing the report")
		gt.Value(t, ev.ColorId).Equal("5")
		gt.Value(t, ev.Transparency).Equal("opaque")
		gt.Value(t, ev.Start.DateTime).Equal("2026-03-10T09:00:00Z")
		gt.Value(t, ev.End.DateTime).Equal("2026-03-10T10:30:00Z")
		gt.Bool(t, ev.Reminders.UseDefault).False()
	})

	t.Run("missing back-at defaults to two hours", func(t *testing.T) {
		ev := gcal.BuildEvent(&model.SyncRequest{Status: types.StatusAway}, baseTime)
		gt.Value(t, ev.Summary).Equal("✈️ Away")
		gt.Value(t, ev.Description).Equal("Status synced from Qoit - away")
		gt.Value(t, ev.ColorId).Equal("11")
		gt.Value(t, ev.End.DateTime).Equal("2026-03-10T11:00:00Z")
	})

	t.Run("qoit uses the gray color", func(t *testing.T) {
		ev := gcal.BuildEvent(&model.SyncRequest{Status: types.StatusQoit}, baseTime)
		gt.Value(t, ev.Summary).Equal("🌙 Qoit Mode")
		gt.Value(t, ev.ColorId).Equal("8")
	})
}

// fakeCalendar emulates the subset of the Calendar API used by the provider
type fakeCalendar struct {
	mu           sync.Mutex
	events       map[string]*calendar.Event
	nextID       int
	tokens       []string
	refreshCount int
	failInsert   bool
	failRefresh  bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: make(map[string]*calendar.Event)}
}

func (f *fakeCalendar) add(ev *calendar.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev.Id = fmt.Sprintf("ev%d", f.nextID)
	f.events[ev.Id] = ev
}

func (f *fakeCalendar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeCalendar) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))
		items := make([]*calendar.Event, 0, len(f.events))
		for _, ev := range f.events {
			items = append(items, ev)
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&calendar.Events{Items: items})
	})

	mux.HandleFunc("POST /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.failInsert
		f.mu.Unlock()
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Insufficient Permission"}}`))
			return
		}

		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.add(&ev)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&ev)
	})

	mux.HandleFunc("DELETE /calendars/primary/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.events, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.refreshCount++
		fail := f.failRefresh
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"refreshed-token","token_type":"Bearer","expires_in":3600}`))
	})

	return mux
}

func newTestProvider(t *testing.T, f *fakeCalendar) *gcal.Provider {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	return gcal.New("client-id", "client-secret",
		gcal.WithEndpoint(srv.URL+"/"),
		gcal.WithTokenURL(srv.URL+"/token"),
		gcal.WithHTTPClient(srv.Client()),
		gcal.WithNow(func() time.Time { return baseTime }),
	)
}

func validIntegration() *model.Integration {
	return &model.Integration{
		UserID:       "user-1",
		Type:         types.IntegrationGoogleCalendar,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    ptr(baseTime.Add(time.Hour)),
		IsActive:     true,
	}
}

func TestProvider_Sync(t *testing.T) {
	t.Run("repeated syncs leave exactly one event", func(t *testing.T) {
		f := newFakeCalendar()
		p := newTestProvider(t, f)
		ctx := context.Background()
		req := &model.SyncRequest{Status: types.StatusFocused, BackAt: ptr(baseTime.Add(time.Hour))}

		gt.Bool(t, p.Sync(ctx, validIntegration(), req).Success).True()
		gt.Bool(t, p.Sync(ctx, validIntegration(), req).Success).True()
		gt.Number(t, f.count()).Equal(1)
		gt.String(t, f.tokens[0]).Contains("access-token")
	})

	t.Run("available removes the active event", func(t *testing.T) {
		f := newFakeCalendar()
		p := newTestProvider(t, f)
		ctx := context.Background()

		gt.Bool(t, p.Sync(ctx, validIntegration(), &model.SyncRequest{Status: types.StatusAway}).Success).True()
		gt.Number(t, f.count()).Equal(1)

		gt.Bool(t, p.Sync(ctx, validIntegration(), &model.SyncRequest{Status: types.StatusAvailable}).Success).True()
		gt.Number(t, f.count()).Equal(0)
	})

	t.Run("unrelated and ended events are kept", func(t *testing.T) {
		f := newFakeCalendar()
		f.add(&calendar.Event{
			Summary:     "Team sync",
			Description: "Weekly Qoit planning",
			End:         &calendar.EventDateTime{DateTime: baseTime.Add(time.Hour).Format(time.RFC3339)},
		})
		f.add(&calendar.Event{
			Summary:     "🌙 Qoit Mode",
			Description: "Status synced from Qoit - qoit",
			End:         &calendar.EventDateTime{DateTime: baseTime.Add(-time.Hour).Format(time.RFC3339)},
		})
		p := newTestProvider(t, f)

		gt.Bool(t, p.Sync(context.Background(), validIntegration(), &model.SyncRequest{Status: types.StatusAvailable}).Success).True()
		gt.Number(t, f.count()).Equal(2)
	})

	t.Run("expired token is refreshed before the sync", func(t *testing.T) {
		f := newFakeCalendar()
		p := newTestProvider(t, f)
		integration := validIntegration()
		integration.ExpiresAt = ptr(baseTime.Add(-time.Minute))

		result := p.Sync(context.Background(), integration, &model.SyncRequest{Status: types.StatusQoit})
		gt.Bool(t, result.Success).True()
		gt.Number(t, f.refreshCount).Equal(1)
		gt.String(t, f.tokens[0]).Contains("refreshed-token")
	})

	t.Run("failed refresh reports the provider failure", func(t *testing.T) {
		f := newFakeCalendar()
		f.failRefresh = true
		p := newTestProvider(t, f)
		integration := validIntegration()
		integration.ExpiresAt = ptr(baseTime.Add(-time.Minute))

		result := p.Sync(context.Background(), integration, &model.SyncRequest{Status: types.StatusQoit})
		gt.Bool(t, result.Success).False()
		gt.Value(t, result.Error).Equal("Token expired and refresh failed")
		gt.Number(t, f.count()).Equal(0)
	})

	t.Run("expired token without refresh token fails", func(t *testing.T) {
		f := newFakeCalendar()
		p := newTestProvider(t, f)
		integration := validIntegration()
		integration.ExpiresAt = ptr(baseTime.Add(-time.Minute))
		integration.RefreshToken = ""

		result := p.Sync(context.Background(), integration, &model.SyncRequest{Status: types.StatusQoit})
		gt.Bool(t, result.Success).False()
		gt.Number(t, f.refreshCount).Equal(0)
	})

	t.Run("insert failure carries the API message", func(t *testing.T) {
		f := newFakeCalendar()
		f.failInsert = true
		p := newTestProvider(t, f)

		result := p.Sync(context.Background(), validIntegration(), &model.SyncRequest{Status: types.StatusQoit})
		gt.Bool(t, result.Success).False()
		gt.Value(t, result.Error).Equal("Insufficient Permission")
	})
}
