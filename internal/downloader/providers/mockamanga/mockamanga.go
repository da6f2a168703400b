// A mock provider for development and testing purposes. It simulates
// searching and fetching from a real site without making network calls.
package mockamanga

import (
	"fmt"

	"github.com/mhiraki/comi-go/internal/models"
)

type MockamangaProvider struct {
	pageBaseURL string
}

func New() *MockamangaProvider {
	return &MockamangaProvider{pageBaseURL: "https://placehold.co"}
}

// NewWithPageBase returns a provider whose page URLs point at the given
// base URL, so tests can serve pages from an httptest server.
func NewWithPageBase(base string) *MockamangaProvider {
	return &MockamangaProvider{pageBaseURL: base}
}

func (p *MockamangaProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "mockamanga",
		Name: "Mockamanga",
	}
}

func (p *MockamangaProvider) Search(query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	for i := 1; i <= 10; i++ {
		results = append(results, models.SearchResult{
			Title:    fmt.Sprintf("%s - Result %d", query, i),
			Author:   "Mock Author",
			CoverURL: fmt.Sprintf("https://placehold.co/400x600?text=Cover+%d", i),
			PathWord: fmt.Sprintf("mock-comic-%d", i),
		})
	}
	return results, nil
}

func (p *MockamangaProvider) GetComic(pathWord string) (*models.Comic, error) {
	comic := &models.Comic{
		UUID:       "uuid-" + pathWord,
		Title:      "Mock Comic " + pathWord,
		PathWord:   pathWord,
		Authors:    []models.Author{{Name: "Mock Author", PathWord: "mock-author"}},
		Status:     "ongoing",
		Brief:      "A comic that exists only in tests.",
		CoverURL:   p.pageBaseURL + "/cover.jpg",
		ProviderID: p.GetInfo().ID,
		Groups:     make(map[string][]models.ChapterInfo),
	}
	var chapters []models.ChapterInfo
	for i := 1; i <= 5; i++ {
		chapters = append(chapters, models.ChapterInfo{
			ChapterUUID:   fmt.Sprintf("mock-chapter-%s-%d", pathWord, i),
			ChapterTitle:  fmt.Sprintf("第%d话", i),
			ChapterSize:   3,
			ComicUUID:     comic.UUID,
			ComicTitle:    comic.Title,
			ComicPathWord: pathWord,
			GroupPathWord: "default",
			GroupTitle:    "默認",
			GroupSize:     5,
			Order:         float64(i),
			ChapterType:   1,
		})
	}
	comic.Groups["default"] = chapters
	return comic, nil
}

func (p *MockamangaProvider) GetFavorites(page int) (*models.FavoritePage, error) {
	result := &models.FavoritePage{Total: 3}
	if page > 1 {
		return result, nil
	}
	for i := 1; i <= 3; i++ {
		result.Comics = append(result.Comics, models.FavoriteComic{
			UUID:            fmt.Sprintf("uuid-mock-comic-%d", i),
			Title:           fmt.Sprintf("Mock Comic mock-comic-%d", i),
			PathWord:        fmt.Sprintf("mock-comic-%d", i),
			Author:          "Mock Author",
			CoverURL:        fmt.Sprintf("%s/cover-%d.jpg", p.pageBaseURL, i),
			LastChapterName: "第5话",
			UpdatedAt:       "2024-01-02",
		})
	}
	return result, nil
}

func (p *MockamangaProvider) GetPageURLs(comicPathWord, chapterUUID string) ([]string, error) {
	var urls []string
	for i := 1; i <= 3; i++ {
		urls = append(urls, fmt.Sprintf("%s/%s/%s/page-%d.jpg", p.pageBaseURL, comicPathWord, chapterUUID, i))
	}
	return urls, nil
}
