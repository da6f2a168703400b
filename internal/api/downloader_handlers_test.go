package api_test

// A test file for the provider and download queue endpoints.
import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/downloader/providers/kaviar"
	"github.com/mhiraki/comi-go/internal/models"
	"github.com/mhiraki/comi-go/internal/testutil"
)

func TestDownloaderHandlers(t *testing.T) {
	server, db := testutil.SetupTestServer(t)
	router := server.Router()

	t.Run("List Providers", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		var providerList []models.ProviderInfo
		if err := json.Unmarshal(rr.Body.Bytes(), &providerList); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(providerList) < 1 || providerList[0].ID != "mockamanga" {
			t.Errorf("handler returned incorrect provider list: got %+v", providerList)
		}
	})

	t.Run("Provider Search", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers/mockamanga/search?q=manga", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var results []models.SearchResult
		json.Unmarshal(rr.Body.Bytes(), &results)
		if len(results) != 10 {
			t.Errorf("Expected 10 search results, got %d", len(results))
		}
	})

	t.Run("Provider Get Comic", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers/mockamanga/comics/mock-comic-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var comic models.Comic
		if err := json.Unmarshal(rr.Body.Bytes(), &comic); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if comic.PathWord != "mock-comic-1" {
			t.Errorf("Expected path word mock-comic-1, got %q", comic.PathWord)
		}
		if len(comic.Groups["default"]) != 5 {
			t.Errorf("Expected 5 chapters in default group, got %d", len(comic.Groups["default"]))
		}
		for _, ch := range comic.Groups["default"] {
			if ch.Downloaded {
				t.Errorf("Chapter %s marked downloaded with an empty library", ch.ChapterUUID)
			}
		}
	})

	t.Run("Provider Favorites", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers/mockamanga/favorites?page=1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var page models.FavoritePage
		if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if page.Total != 3 {
			t.Errorf("Expected total 3, got %d", page.Total)
		}
		if len(page.Comics) != 3 {
			t.Fatalf("Expected 3 favorites, got %d", len(page.Comics))
		}
		for _, fav := range page.Comics {
			if fav.Downloaded {
				t.Errorf("Favorite %s marked downloaded with an empty library", fav.PathWord)
			}
		}
	})

	t.Run("Provider Favorites Invalid Page", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers/mockamanga/favorites?page=zero", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})

	t.Run("Provider Favorites Unsupported", func(t *testing.T) {
		providers.Register(kaviar.New())

		req, _ := http.NewRequest("GET", "/api/providers/kaviar/favorites", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
	})

	t.Run("Provider Not Found", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/providers/nonexistent/search?q=manga", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
	})

	t.Run("Add Chapters To Queue", func(t *testing.T) {
		payload := map[string]any{
			"provider_id":     "mockamanga",
			"comic_path_word": "mock-comic-1",
			"chapter_uuids":   []string{"mock-chapter-mock-comic-1-1", "mock-chapter-mock-comic-1-2"},
		}
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/api/downloads/queue", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusAccepted {
			t.Fatalf("handler returned wrong status code: got %v want %v, body: %s", status, http.StatusAccepted, rr.Body.String())
		}

		var count int
		db.QueryRow("SELECT COUNT(*) FROM download_queue").Scan(&count)
		if count != 2 {
			t.Errorf("Expected 2 items in queue, got %d", count)
		}
	})

	t.Run("Add Unknown Chapters To Queue", func(t *testing.T) {
		payload := map[string]any{
			"provider_id":     "mockamanga",
			"comic_path_word": "mock-comic-1",
			"chapter_uuids":   []string{"no-such-chapter"},
		}
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/api/downloads/queue", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})

	t.Run("Get Download Queue", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/downloads/queue", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var items []*models.DownloadQueueItem
		if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("Expected 2 queue items, got %d", len(items))
		}
		if items[0].ComicPathWord != "mock-comic-1" || items[0].GroupTitle != "默認" {
			t.Errorf("Queue item missing context fields: %+v", items[0])
		}
	})

	t.Run("Queue Action Pause All", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"action": "pause_all"})
		req, _ := http.NewRequest("POST", "/api/downloads/action", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var count int
		db.QueryRow("SELECT COUNT(*) FROM download_queue WHERE status = 'paused'").Scan(&count)
		if count != 2 {
			t.Errorf("Expected 2 paused items, got %d", count)
		}

		// Resume so later subtests see a clean slate.
		body, _ = json.Marshal(map[string]string{"action": "resume_all"})
		req, _ = http.NewRequest("POST", "/api/downloads/action", bytes.NewReader(body))
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("resume_all returned %d", rr.Code)
		}
	})

	t.Run("Queue Action Invalid", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"action": "explode"})
		req, _ := http.NewRequest("POST", "/api/downloads/action", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})
}

func TestQueueItemActionHandler(t *testing.T) {
	server, db := testutil.SetupTestServer(t)
	router := server.Router()

	itemID := testutil.InsertQueueItem(t, db, "Comic A", "Chapter 1", "uuid-ch1", "mockamanga", "queued", 0)
	idStr := strconv.FormatInt(itemID, 10)

	doAction := func(t *testing.T, id string, action string) *httptest.ResponseRecorder {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"action": action})
		req, _ := http.NewRequest("POST", "/api/downloads/queue/"+id+"/action", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	status := func(t *testing.T) string {
		t.Helper()
		var s string
		if err := db.QueryRow("SELECT status FROM download_queue WHERE id = ?", itemID).Scan(&s); err != nil {
			t.Fatalf("Failed to read item status: %v", err)
		}
		return s
	}

	t.Run("Pause Item", func(t *testing.T) {
		rr := doAction(t, idStr, "pause")
		if rr.Code != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
		if got := status(t); got != "paused" {
			t.Errorf("Expected status paused, got %q", got)
		}
	})

	t.Run("Resume Item", func(t *testing.T) {
		rr := doAction(t, idStr, "resume")
		if rr.Code != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
		if got := status(t); got != "queued" {
			t.Errorf("Expected status queued, got %q", got)
		}
	})

	t.Run("Retry Non-Failed Item", func(t *testing.T) {
		rr := doAction(t, idStr, "retry")
		if rr.Code != http.StatusNotFound {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
		}
	})

	t.Run("Invalid Item ID", func(t *testing.T) {
		rr := doAction(t, "abc", "pause")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Invalid Action", func(t *testing.T) {
		rr := doAction(t, idStr, "vanish")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Delete Item", func(t *testing.T) {
		rr := doAction(t, idStr, "delete")
		if rr.Code != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
		var count int
		db.QueryRow("SELECT COUNT(*) FROM download_queue").Scan(&count)
		if count != 0 {
			t.Errorf("Expected an empty queue after delete, got %d items", count)
		}
	})
}
