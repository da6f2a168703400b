package models

// ProviderInfo contains static information about a provider.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchResult represents a single comic found by a provider.
type SearchResult struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
	PathWord string `json:"path_word"` // unique identifier on the source site
}

// Provider defines the contract that every source-site connector must
// implement.
type Provider interface {
	GetInfo() ProviderInfo
	Search(query string) ([]SearchResult, error)
	// GetComic returns full comic metadata including every group's chapters.
	GetComic(pathWord string) (*Comic, error)
	// GetPageURLs returns the image URLs of a chapter in page order.
	GetPageURLs(comicPathWord, chapterUUID string) ([]string, error)
}

// FavoriteComic is one entry of a user's bookshelf on the source site.
type FavoriteComic struct {
	UUID            string `json:"uuid"`
	Title           string `json:"title"`
	PathWord        string `json:"path_word"`
	Author          string `json:"author"`
	CoverURL        string `json:"cover_url"`
	LastChapterName string `json:"last_chapter_name"`
	UpdatedAt       string `json:"updated_at"`

	// Set from the on-disk index, never returned by the site.
	Downloaded  bool   `json:"downloaded"`
	DownloadDir string `json:"download_dir,omitempty"`
}

// FavoritePage is one page of a user's favorites together with the total
// count across all pages.
type FavoritePage struct {
	Comics []FavoriteComic `json:"comics"`
	Total  int             `json:"total"`
}

// FavoritesProvider is implemented by providers whose source site exposes
// an account bookshelf. Pages start at 1.
type FavoritesProvider interface {
	GetFavorites(page int) (*FavoritePage, error)
}
