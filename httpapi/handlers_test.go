package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-artist-directory/cache"
	"github.com/goliatone/go-artist-directory/directory"
	"github.com/goliatone/go-artist-directory/httpapi"
	"github.com/goliatone/go-artist-directory/pkg/di"
	"github.com/goliatone/go-artist-directory/pkg/testsupport"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testsupport.NewTestDB(t)
	logger := testsupport.NewTestLogger(t)

	cacheService, err := cache.NewCacheService(cache.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	container := di.NewContainerWithCache(db, cacheService, logger)

	server := httpapi.NewServer(":0", container.IngestService(), container.QueryService(), logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode GET %s: %v", path, err)
		}
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func validArtist(name string) map[string]any {
	return map[string]any{
		"name":         name,
		"city_name":    "Lisbon",
		"state_name":   "Lisboa",
		"country_name": "Portugal",
	}
}

func TestCreateAndGetArtist(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/artists", map[string]any{
		"name":             "Maria Silva",
		"instagram_handle": "@mariasilva",
		"city_name":        "Lisbon",
		"state_name":       "Lisboa",
		"country_name":     "Portugal",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created directory.IngestResult
	decode(t, resp, &created)
	if created.ArtistID == 0 {
		t.Fatal("response has no artist_id")
	}
	if created.Slug != "maria-silva" {
		t.Errorf("slug = %q", created.Slug)
	}

	var body struct {
		Result directory.ArtistDetail `json:"result"`
	}
	getResp := getJSON(t, ts, fmt.Sprintf("/artists/%d", created.ArtistID), &body)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", getResp.StatusCode)
	}
	detail := body.Result
	if detail.Name != "Maria Silva" {
		t.Errorf("name = %q", detail.Name)
	}
	if detail.InstagramHandle == nil || *detail.InstagramHandle != "mariasilva" {
		t.Errorf("handle = %v", detail.InstagramHandle)
	}
	if detail.CityName == nil || *detail.CityName != "Lisbon" {
		t.Errorf("city = %v", detail.CityName)
	}
}

func TestCreateArtistValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/artists", map[string]any{"name": "No Location"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["error"] == "" {
		t.Error("error body missing error field")
	}
}

func TestGetArtistNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/artists/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetArtistInvalidID(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/artists/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSearchArtists(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/artists", validArtist("Maria Silva")).Body.Close()
	postJSON(t, ts, "/artists", validArtist("Joe Doe")).Body.Close()

	var body struct {
		Results []directory.ArtistSummary `json:"results"`
		Count   int                       `json:"count"`
		Query   string                    `json:"query"`
	}
	resp := getJSON(t, ts, "/search-artists?query=Maria+Silva", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Count != 1 || len(body.Results) != 1 {
		t.Fatalf("count=%d len=%d, want 1/1", body.Count, len(body.Results))
	}
	if body.Query != "maria silva" {
		t.Errorf("echoed query = %q, want normalized", body.Query)
	}
	if body.Results[0].Name != "Maria Silva" {
		t.Errorf("result = %q", body.Results[0].Name)
	}
}

func TestSearchArtistsEmptyQuery(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Results []directory.ArtistSummary `json:"results"`
		Count   int                       `json:"count"`
	}
	resp := getJSON(t, ts, "/search-artists", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Count != 0 || body.Results == nil {
		t.Errorf("empty query should yield an empty result array, got %+v", body)
	}
}

func TestListCities(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/artists", validArtist("Maria Silva")).Body.Close()

	var page directory.CityPage
	resp := getJSON(t, ts, "/cities?include_artists=true", &page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("count=%d len=%d", page.Count, len(page.Results))
	}
	if len(page.Results[0].Artists) != 1 {
		t.Errorf("embedded artists = %+v", page.Results[0].Artists)
	}
}

func TestUpdateArtist(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/artists", validArtist("Maria Silva"))
	var created directory.IngestResult
	decode(t, resp, &created)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]any{"name": "Maria S. Costa"}); err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/artists/%d", ts.URL, created.ArtistID), &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", putResp.StatusCode)
	}
	var updated struct {
		Result directory.Artist `json:"result"`
	}
	decode(t, putResp, &updated)
	if updated.Result.Name != "Maria S. Costa" {
		t.Errorf("updated name = %q", updated.Result.Name)
	}

	// The cached detail must reflect the update immediately.
	var body struct {
		Result directory.ArtistDetail `json:"result"`
	}
	getJSON(t, ts, fmt.Sprintf("/artists/%d", created.ArtistID), &body)
	if body.Result.Name != "Maria S. Costa" {
		t.Errorf("detail name = %q after update", body.Result.Name)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, ts, "/healthz", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/artists", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/healthz", nil)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	echo, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer echo.Body.Close()
	if got := echo.Header.Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("request id = %q, want echoed %q", got, "fixed-id")
	}
}
