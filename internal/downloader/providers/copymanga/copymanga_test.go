package copymanga

// It uses a mock HTTP server to avoid making real network requests.

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// setupTestServer creates a mock HTTP server to respond to API calls.
func setupTestServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v3/search/comic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"results":{"list":[{"name":"Test Comic","path_word":"testcomic","cover":"https://example.com/cover.jpg","author":[{"name":"Author A","path_word":"authora"},{"name":"Author B","path_word":"authorb"}]}],"total":1,"limit":20,"offset":0}}`)
	})

	mux.HandleFunc("/api/v3/comic2/testcomic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"results":{"comic":{"uuid":"comic-uuid","name":"Test Comic","path_word":"testcomic","author":[{"name":"Author A","path_word":"authora"}],"status":{"value":0,"display":"連載中"},"brief":"about","cover":"https://example.com/cover.jpg"},"groups":{"default":{"path_word":"default","count":2,"name":"默認"}},"popular":123}}`)
	})

	mux.HandleFunc("/api/v3/comic/testcomic/group/default/chapters", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"results":{"list":[{"uuid":"ch-1","name":"第13话","size":20,"count":2,"ordered":130,"type":1},{"uuid":"ch-2","name":"第13.1话","size":8,"count":2,"ordered":131,"type":3}],"total":2,"limit":500,"offset":0}}`)
	})

	mux.HandleFunc("/api/v3/member/collect/comics", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("offset") != "0" || r.URL.Query().Get("free_type") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"results":{"list":[{"uuid":101,"comic":{"uuid":"comic-uuid","name":"Test Comic","path_word":"testcomic","author":[{"name":"Author A","path_word":"authora"}],"cover":"https://example.com/cover.jpg","datetime_updated":"2024-01-02","last_chapter_name":"第13.1话"}}],"total":1,"limit":20,"offset":0}}`)
	})

	mux.HandleFunc("/api/v3/comic/testcomic/chapter2/ch-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// Contents are deliberately out of order; words carries the
		// real page index.
		fmt.Fprint(w, `{"code":200,"results":{"chapter":{"uuid":"ch-1","name":"第13话","contents":[{"url":"https://img.example.com/b.c800x.jpg"},{"url":"https://img.example.com/a.c800x.jpg"}],"words":[1,0]}}}`)
	})

	return httptest.NewServer(mux)
}

func TestCopymangaProvider(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	p := New(StaticOptions(server.URL, "secret"))

	t.Run("Search", func(t *testing.T) {
		results, err := p.Search("test")
		if err != nil {
			t.Fatalf("Search() failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 search result, got %d", len(results))
		}
		if results[0].Title != "Test Comic" {
			t.Errorf("Expected title 'Test Comic', got '%s'", results[0].Title)
		}
		if results[0].PathWord != "testcomic" {
			t.Errorf("Expected path word 'testcomic', got '%s'", results[0].PathWord)
		}
		if results[0].Author != "Author A, Author B" {
			t.Errorf("Expected joined authors, got '%s'", results[0].Author)
		}
	})

	t.Run("GetComic", func(t *testing.T) {
		comic, err := p.GetComic("testcomic")
		if err != nil {
			t.Fatalf("GetComic() failed: %v", err)
		}
		if comic.Title != "Test Comic" {
			t.Errorf("Expected title 'Test Comic', got '%s'", comic.Title)
		}
		if comic.Status != "ongoing" {
			t.Errorf("Expected status 'ongoing', got '%s'", comic.Status)
		}
		if comic.ProviderID != "copymanga" {
			t.Errorf("Expected provider id 'copymanga', got '%s'", comic.ProviderID)
		}
		chapters := comic.Groups["default"]
		if len(chapters) != 2 {
			t.Fatalf("Expected 2 chapters in default group, got %d", len(chapters))
		}
		if chapters[0].Order != 13 {
			t.Errorf("Expected order 13, got %v", chapters[0].Order)
		}
		if chapters[1].Order != 13.1 {
			t.Errorf("Expected order 13.1, got %v", chapters[1].Order)
		}
		if chapters[0].GroupTitle != "默認" {
			t.Errorf("Expected group title '默認', got '%s'", chapters[0].GroupTitle)
		}
		if chapters[0].ChapterType != 1 {
			t.Errorf("Expected chapter type 1, got %d", chapters[0].ChapterType)
		}
		if chapters[1].ChapterType != 3 {
			t.Errorf("Expected chapter type 3, got %d", chapters[1].ChapterType)
		}
	})

	t.Run("GetFavorites", func(t *testing.T) {
		page, err := p.GetFavorites(1)
		if err != nil {
			t.Fatalf("GetFavorites() failed: %v", err)
		}
		if page.Total != 1 {
			t.Errorf("Expected total 1, got %d", page.Total)
		}
		if len(page.Comics) != 1 {
			t.Fatalf("Expected 1 favorite, got %d", len(page.Comics))
		}
		fav := page.Comics[0]
		if fav.PathWord != "testcomic" {
			t.Errorf("Expected path word 'testcomic', got '%s'", fav.PathWord)
		}
		if fav.Author != "Author A" {
			t.Errorf("Expected author 'Author A', got '%s'", fav.Author)
		}
		if fav.LastChapterName != "第13.1话" {
			t.Errorf("Expected last chapter '第13.1话', got '%s'", fav.LastChapterName)
		}
	})

	t.Run("GetFavorites requires a token", func(t *testing.T) {
		anon := New(StaticOptions(server.URL, ""))
		if _, err := anon.GetFavorites(1); err == nil {
			t.Fatal("Expected an error without a token, got nil")
		}
	})

	t.Run("GetPageURLs", func(t *testing.T) {
		urls, err := p.GetPageURLs("testcomic", "ch-1")
		if err != nil {
			t.Fatalf("GetPageURLs() failed: %v", err)
		}
		if len(urls) != 2 {
			t.Fatalf("Expected 2 page URLs, got %d", len(urls))
		}
		// Sorted by the words index and upgraded to the large rendition.
		if urls[0] != "https://img.example.com/a.c1500x.jpg" {
			t.Errorf("Unexpected first page URL: %s", urls[0])
		}
		if urls[1] != "https://img.example.com/b.c1500x.jpg" {
			t.Errorf("Unexpected second page URL: %s", urls[1])
		}
	})

	t.Run("API Error Code", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/comic2/gone", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":404,"message":"not found","results":null}`)
		})
		errServer := httptest.NewServer(mux)
		defer errServer.Close()

		ep := New(StaticOptions(errServer.URL, ""))
		if _, err := ep.GetComic("gone"); err == nil {
			t.Fatal("Expected an error for an API error code, got nil")
		}
	})
}
