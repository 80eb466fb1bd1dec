package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"i4.energy/across/tata/geo"
	"i4.energy/across/tata/service"
)

type fakeTracker struct {
	snap      service.Snapshot
	err       error
	refreshes int
}

func (f *fakeTracker) Status(context.Context) (service.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeTracker) RequestRefresh(context.Context) (service.Snapshot, error) {
	if f.err == nil {
		f.refreshes++
	}
	return f.snap, f.err
}

func serve(t *testing.T, tracker Tracker, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(tracker, zerolog.Nop())

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer(t *testing.T) {
	snap := service.Snapshot{
		ServiceEnabled: true,
		PhoneNumber:    "+36301234567",
		Battery:        0.5,
		Location:       &geo.Location{Latitude: 46.7624859, Longitude: 18.6304591, Accuracy: 150, Timestamp: 1670846541123},
		Uptime:         "1m0s",
	}

	t.Run("Health", func(t *testing.T) {
		rec := serve(t, &fakeTracker{snap: snap}, http.MethodGet, "/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "ok" || body["uptime"] != "1m0s" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("Health when busy", func(t *testing.T) {
		rec := serve(t, &fakeTracker{err: context.DeadlineExceeded}, http.MethodGet, "/health")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Health when stopped", func(t *testing.T) {
		rec := serve(t, &fakeTracker{err: service.ErrStopped}, http.MethodGet, "/health")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Status renders the snapshot", func(t *testing.T) {
		rec := serve(t, &fakeTracker{snap: snap}, http.MethodGet, "/api/v1/status")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var got service.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.PhoneNumber != snap.PhoneNumber || got.Location == nil || got.Location.Latitude != snap.Location.Latitude {
			t.Errorf("snapshot = %+v", got)
		}
		var raw map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
			t.Fatal(err)
		}
		if _, ok := raw["park_location"]; ok {
			t.Error("absent park location should be omitted")
		}
	})

	t.Run("Status errors", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{service.ErrStopped, http.StatusServiceUnavailable},
			{context.DeadlineExceeded, http.StatusGatewayTimeout},
			{context.Canceled, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			rec := serve(t, &fakeTracker{err: tt.err}, http.MethodGet, "/api/v1/status")
			if rec.Code != tt.want {
				t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
			}
		}
	})

	t.Run("Refresh is accepted", func(t *testing.T) {
		tracker := &fakeTracker{snap: snap}
		rec := serve(t, tracker, http.MethodPost, "/api/v1/refresh")
		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d", rec.Code)
		}
		if tracker.refreshes != 1 {
			t.Errorf("refreshes = %d", tracker.refreshes)
		}
	})

	t.Run("Refresh needs POST", func(t *testing.T) {
		tracker := &fakeTracker{snap: snap}
		rec := serve(t, tracker, http.MethodGet, "/api/v1/refresh")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
		if tracker.refreshes != 0 {
			t.Error("refresh requested")
		}
	})
}
