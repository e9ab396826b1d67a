package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filter-tracker/backend/internal/booking"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/storage/models"
)

func newTestServer(t *testing.T) (*httptest.Server, Deps) {
	t.Helper()

	db, err := storage.NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db))

	filters := storage.NewFilterRepository(db)
	accessories := storage.NewAccessoryRepository(db)
	bookings := storage.NewBookingRepository(db)

	require.NoError(t, filters.EnsureDefaults(context.Background()))

	deps := Deps{
		DB:             db,
		Filters:        filters,
		Accessories:    accessories,
		Bookings:       bookings,
		BookingService: booking.NewService(db, filters, accessories, bookings),
	}

	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)

	return server, deps
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func seedAccessory(t *testing.T, server *httptest.Server, name string, pool models.PoolTag, total int) models.Accessory {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/accessories", map[string]any{
		"name":           name,
		"pool":           pool,
		"total_quantity": total,
		"unit":           "units",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var acc models.Accessory
	decodeBody(t, resp, &acc)
	return acc
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)

	var health map[string]any
	decodeBody(t, resp, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])
}

func TestListFiltersSeedsFleet(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/filters")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fleet []map[string]any
	decodeBody(t, resp, &fleet)
	require.Len(t, fleet, 4)
	assert.Equal(t, "Filter 1", fleet[0]["name"])
	assert.Equal(t, "10 Micron + UV", fleet[0]["capability"])
	assert.Equal(t, "Storage", fleet[3]["location"])
}

func TestUpdateFilterPartial(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/filters/2", map[string]any{
		"location": "Site 12",
		"notes":    "Running clean",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(server.URL + "/api/filters/2")
	require.NoError(t, err)

	var f map[string]any
	decodeBody(t, getResp, &f)
	assert.Equal(t, "Site 12", f["location"])
	assert.Equal(t, "Running clean", f["notes"])
	// Untouched fields keep their seeded values
	assert.Equal(t, "Filter 2", f["name"])
	assert.Equal(t, float64(90), f["service_frequency_days"])
}

func TestUpdateFilterValidation(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/filters/1", map[string]any{
		"service_frequency_days": 0,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, server.URL+"/api/filters/1", map[string]any{
		"last_service_date": "last tuesday",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, server.URL+"/api/filters/99", map[string]any{
		"notes": "ghost",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccessoryLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	acc := seedAccessory(t, server, "Hose Reel", models.PoolA, 5)
	assert.Equal(t, 1, acc.ID)

	// Windows attach and return on list
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/accessories/%d/windows", server.URL, acc.ID), map[string]any{
		"start_date": "2026-03-01",
		"end_date":   "2026-03-05",
		"quantity":   2,
		"reason":     "valve replacement",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var window models.OutOfServiceWindow
	decodeBody(t, resp, &window)
	assert.NotEmpty(t, window.ID)

	listResp, err := http.Get(server.URL + "/api/accessories")
	require.NoError(t, err)

	var all []models.Accessory
	decodeBody(t, listResp, &all)
	require.Len(t, all, 1)
	require.Len(t, all[0].Windows, 1)
	assert.Equal(t, 2, all[0].Windows[0].Quantity)

	// Window removal
	delResp := doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/accessories/%d/windows/%s", server.URL, acc.ID, window.ID), nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	// Accessory removal
	delResp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/accessories/%d", server.URL, acc.ID), nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
}

func TestCreateAccessoryValidation(t *testing.T) {
	server, _ := newTestServer(t)

	cases := []map[string]any{
		{"pool": "pool-a", "total_quantity": 1},                          // missing name
		{"name": "Pump", "pool": "pool-c", "total_quantity": 1},          // bad pool
		{"name": "Pump", "pool": "pool-a", "total_quantity": -1},         // negative quantity
		{"name": "Pump", "pool": "pool-a", "required_per_booking": -2},   // negative requirement
	}

	for _, body := range cases {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/accessories", body)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	accA := seedAccessory(t, server, "Hose Reel", models.PoolA, 5)
	seedAccessory(t, server, "Transfer Pump", models.PoolB, 3)

	// Filter 2 books 3 reels on the middle day
	resp := doJSON(t, http.MethodPost, server.URL+"/api/filters/2/bookings", map[string]any{
		"bookings": []map[string]any{{
			"dates":    []string{"2026-03-02"},
			"location": "Site 7",
			"type":     "booking",
			"allocations": []map[string]any{
				{"accessory_id": accA.ID, "quantity": 3},
			},
		}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Filter 1 shares pool A: sees the reel constrained by the binding day
	availResp, err := http.Get(server.URL + "/api/filters/1/accessories/available?start=2026-03-01&end=2026-03-03")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, availResp.StatusCode)

	var avail []map[string]any
	decodeBody(t, availResp, &avail)
	require.Len(t, avail, 1) // pool B accessory is not visible
	assert.Equal(t, float64(accA.ID), avail[0]["id"])
	assert.Equal(t, float64(2), avail[0]["available_quantity"])
	assert.Equal(t, float64(3), avail[0]["allocated_count"])

	// Filter 4 sees only pool B, untouched by pool A traffic
	availResp, err = http.Get(server.URL + "/api/filters/4/accessories/available?start=2026-03-01&end=2026-03-03")
	require.NoError(t, err)

	decodeBody(t, availResp, &avail)
	require.Len(t, avail, 1)
	assert.Equal(t, "Transfer Pump", avail[0]["name"])
	assert.Equal(t, float64(3), avail[0]["available_quantity"])
}

func TestAvailabilityEndpointValidation(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/filters/1/accessories/available?start=bogus&end=2026-03-03")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/filters/1/accessories/available?start=2026-03-05&end=2026-03-01")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/filters/42/accessories/available?start=2026-03-01&end=2026-03-03")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommitCapacityViolationEnvelope(t *testing.T) {
	server, _ := newTestServer(t)

	acc := seedAccessory(t, server, "Hose Reel", models.PoolA, 2)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/filters/1/bookings", map[string]any{
		"bookings": []map[string]any{{
			"dates":    []string{"2026-03-01"},
			"location": "Site 12",
			"type":     "booking",
			"allocations": []map[string]any{
				{"accessory_id": acc.ID, "quantity": 3},
			},
		}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details []struct {
			AccessoryID   int    `json:"accessory_id"`
			AccessoryName string `json:"accessory_name"`
			Date          string `json:"date"`
			Requested     int    `json:"requested_quantity"`
			Available     int    `json:"available_quantity"`
		} `json:"details"`
	}
	decodeBody(t, resp, &envelope)

	assert.Equal(t, "capacity_violation", envelope.Error)
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "Hose Reel", envelope.Details[0].AccessoryName)
	assert.Equal(t, "2026-03-01", envelope.Details[0].Date)
	assert.Equal(t, 3, envelope.Details[0].Requested)
	assert.Equal(t, 2, envelope.Details[0].Available)
}

func TestCommitAndRemoveBookings(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/filters/3/bookings", map[string]any{
		"bookings": []map[string]any{{
			"dates":    []string{"2026-03-01", "2026-03-02"},
			"location": "Site 9",
			"type":     "booking",
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]any
	decodeBody(t, resp, &result)
	assert.Equal(t, float64(2), result["bookings_created"])

	// Single-day removal
	delResp := doJSON(t, http.MethodDelete, server.URL+"/api/filters/3/bookings?date=2026-03-01", nil)
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	var removed map[string]int
	decodeBody(t, delResp, &removed)
	assert.Equal(t, 1, removed["bookings_removed"])

	// Nothing left on that day
	delResp = doJSON(t, http.MethodDelete, server.URL+"/api/filters/3/bookings?date=2026-03-01", nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, delResp.StatusCode)

	// Missing parameters
	delResp = doJSON(t, http.MethodDelete, server.URL+"/api/filters/3/bookings", nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, delResp.StatusCode)
}

func TestCommitServiceUpdatesFilter(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/filters/1/bookings", map[string]any{
		"bookings": []map[string]any{{
			"dates": []string{"2026-03-10"},
			"type":  "service",
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]any
	decodeBody(t, resp, &result)
	assert.Equal(t, "2026-03-10", result["last_service_date"])

	getResp, err := http.Get(server.URL + "/api/filters/1")
	require.NoError(t, err)

	var f map[string]any
	decodeBody(t, getResp, &f)
	assert.Equal(t, "2026-03-10", f["last_service_date"])
}

func TestWeeklyReportEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/reports/weekly")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WEEKLY FILTER STATUS REPORT")
	assert.Contains(t, buf.String(), "Total Filters: 4")
}
