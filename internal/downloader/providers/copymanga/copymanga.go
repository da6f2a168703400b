// Package copymanga implements the provider for the copymanga JSON API.
package copymanga

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mhiraki/comi-go/internal/models"
)

const chapterPageSize = 500

// Options are the per-request knobs a user can change at runtime: which
// API domain to hit and the account token, if any.
type Options struct {
	Domain string
	Token  string
}

// Provider implements the Provider interface for copymanga. Options are
// read through a function so settings changes take effect without
// re-registering.
type Provider struct {
	client *http.Client
	opts   func() Options
}

// New creates a new copymanga provider. opts is called before every
// request.
func New(opts func() Options) *Provider {
	return &Provider{
		client: &http.Client{Timeout: 20 * time.Second},
		opts:   opts,
	}
}

// StaticOptions wraps fixed options for callers without a settings
// manager, such as tests.
func StaticOptions(domain, token string) func() Options {
	return func() Options { return Options{Domain: domain, Token: token} }
}

// GetInfo returns static information about this provider.
func (p *Provider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "copymanga",
		Name: "CopyManga",
	}
}

// Search queries the API for comics matching the given text.
func (p *Provider) Search(query string) ([]models.SearchResult, error) {
	req, err := p.newRequest("/api/v3/search/comic")
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("q", query)
	q.Add("limit", "20")
	q.Add("offset", "0")
	req.URL.RawQuery = q.Encode()

	var payload searchResults
	if err := p.do(req, &payload); err != nil {
		return nil, err
	}

	var results []models.SearchResult
	for _, item := range payload.List {
		authors := make([]string, 0, len(item.Author))
		for _, a := range item.Author {
			authors = append(authors, a.Name)
		}
		results = append(results, models.SearchResult{
			Title:    item.Name,
			Author:   strings.Join(authors, ", "),
			CoverURL: item.Cover,
			PathWord: item.PathWord,
		})
	}
	return results, nil
}

// GetComic fetches a comic's details and the full chapter list of every
// group.
func (p *Provider) GetComic(pathWord string) (*models.Comic, error) {
	req, err := p.newRequest(fmt.Sprintf("/api/v3/comic2/%s", pathWord))
	if err != nil {
		return nil, err
	}

	var payload comicResults
	if err := p.do(req, &payload); err != nil {
		return nil, err
	}

	detail := payload.Comic
	status := "completed"
	if detail.Status.Value == 0 {
		status = "ongoing"
	}

	authors := make([]models.Author, 0, len(detail.Author))
	for _, a := range detail.Author {
		authors = append(authors, models.Author{Name: a.Name, PathWord: a.PathWord})
	}

	comic := &models.Comic{
		UUID:       detail.UUID,
		Title:      detail.Name,
		PathWord:   detail.PathWord,
		Authors:    authors,
		Status:     status,
		Brief:      detail.Brief,
		CoverURL:   detail.Cover,
		ProviderID: p.GetInfo().ID,
		Groups:     make(map[string][]models.ChapterInfo, len(payload.Groups)),
	}

	for groupPathWord, group := range payload.Groups {
		chapters, err := p.getGroupChapters(detail, group)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chapters of group %s: %w", groupPathWord, err)
		}
		comic.Groups[groupPathWord] = chapters
	}
	return comic, nil
}

// getGroupChapters pages through a group's chapter list.
func (p *Provider) getGroupChapters(detail comicData, group groupData) ([]models.ChapterInfo, error) {
	var chapters []models.ChapterInfo
	offset := 0
	for {
		req, err := p.newRequest(fmt.Sprintf("/api/v3/comic/%s/group/%s/chapters", detail.PathWord, group.PathWord))
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Add("limit", fmt.Sprintf("%d", chapterPageSize))
		q.Add("offset", fmt.Sprintf("%d", offset))
		req.URL.RawQuery = q.Encode()

		var payload chapterListResults
		if err := p.do(req, &payload); err != nil {
			return nil, err
		}

		for _, ch := range payload.List {
			chapters = append(chapters, models.ChapterInfo{
				ChapterUUID:   ch.UUID,
				ChapterTitle:  ch.Name,
				ChapterSize:   ch.Size,
				ComicUUID:     detail.UUID,
				ComicTitle:    detail.Name,
				ComicPathWord: detail.PathWord,
				GroupPathWord: group.PathWord,
				GroupTitle:    group.Name,
				GroupSize:     ch.Count,
				ChapterType:   ch.Type,
				// The API stores the position times ten so fractional
				// chapters (13.1) survive as integers on the wire.
				Order: float64(ch.Ordered) / 10.0,
			})
		}

		if len(payload.List) < chapterPageSize {
			return chapters, nil
		}
		offset += chapterPageSize
	}
}

const favoritePageSize = 20

// GetFavorites fetches one page of the account bookshelf, newest updates
// first. It needs a token; without one the site has no bookshelf to read.
func (p *Provider) GetFavorites(page int) (*models.FavoritePage, error) {
	if p.opts().Token == "" {
		return nil, fmt.Errorf("favorites require an account token")
	}
	if page < 1 {
		page = 1
	}

	req, err := p.newRequest("/api/v3/member/collect/comics")
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("limit", fmt.Sprintf("%d", favoritePageSize))
	q.Add("offset", fmt.Sprintf("%d", (page-1)*favoritePageSize))
	q.Add("free_type", "1")
	q.Add("ordering", "-datetime_updated")
	req.URL.RawQuery = q.Encode()

	var payload favoriteResults
	if err := p.do(req, &payload); err != nil {
		return nil, err
	}

	result := &models.FavoritePage{Total: payload.Total}
	for _, item := range payload.List {
		authors := make([]string, 0, len(item.Comic.Author))
		for _, a := range item.Comic.Author {
			authors = append(authors, a.Name)
		}
		result.Comics = append(result.Comics, models.FavoriteComic{
			UUID:            item.Comic.UUID,
			Title:           item.Comic.Name,
			PathWord:        item.Comic.PathWord,
			Author:          strings.Join(authors, ", "),
			CoverURL:        item.Comic.Cover,
			LastChapterName: item.Comic.LastChapterName,
			UpdatedAt:       item.Comic.DatetimeUpdated,
		})
	}
	return result, nil
}

// GetPageURLs retrieves the page image URLs of a chapter in reading
// order.
func (p *Provider) GetPageURLs(comicPathWord, chapterUUID string) ([]string, error) {
	req, err := p.newRequest(fmt.Sprintf("/api/v3/comic/%s/chapter2/%s", comicPathWord, chapterUUID))
	if err != nil {
		return nil, err
	}

	var payload pageResults
	if err := p.do(req, &payload); err != nil {
		return nil, err
	}

	contents := payload.Chapter.Contents
	words := payload.Chapter.Words
	if len(words) != len(contents) {
		return nil, fmt.Errorf("chapter %s: got %d page indexes for %d pages", chapterUUID, len(words), len(contents))
	}

	type indexedPage struct {
		url   string
		index int
	}
	pages := make([]indexedPage, len(contents))
	for i, c := range contents {
		pages[i] = indexedPage{
			// Ask for the higher-resolution rendition.
			url:   strings.Replace(c.URL, ".c800x.", ".c1500x.", 1),
			index: words[i],
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	urls := make([]string, len(pages))
	for i, pg := range pages {
		urls[i] = pg.url
	}
	return urls, nil
}

func (p *Provider) newRequest(path string) (*http.Request, error) {
	opts := p.opts()
	base := opts.Domain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	req, err := http.NewRequest("GET", base+path, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("platform", "3")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", "COPY/2.3.2")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Token "+opts.Token)
	}
	return req, nil
}

func (p *Provider) do(req *http.Request, results any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("copymanga API returned status %d for %s", resp.StatusCode, req.URL.Path)
	}

	var envelope apiResponse[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode copymanga response: %w", err)
	}
	if envelope.Code != 200 {
		return fmt.Errorf("copymanga API error %d: %s", envelope.Code, envelope.Message)
	}
	return json.Unmarshal(envelope.Results, results)
}
