// Package kaviar implements a provider for the kaviar mirror site, which
// has no JSON API and is scraped from its HTML pages.
package kaviar

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mhiraki/comi-go/internal/models"
)

const defaultBaseURL = "https://kaviarmanga.net"

// KaviarProvider implements the Provider interface by scraping the
// site's HTML.
type KaviarProvider struct {
	client  *http.Client
	baseURL string
}

func New() *KaviarProvider {
	return &KaviarProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

func (p *KaviarProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "kaviar",
		Name: "Kaviar",
	}
}

func (p *KaviarProvider) Search(query string) ([]models.SearchResult, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(query))
	doc, err := p.fetchDocument(searchURL)
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	doc.Find(".search-results a.comic-card").Each(func(i int, s *goquery.Selection) {
		link, exists := s.Attr("href")
		if !exists {
			return
		}
		// Links look like /comic/{path_word}.
		pathWord := strings.TrimPrefix(link, "/comic/")
		if pathWord == "" || pathWord == link {
			return
		}
		cover, _ := s.Find("img").Attr("src")
		results = append(results, models.SearchResult{
			Title:    strings.TrimSpace(s.Find(".comic-title").Text()),
			Author:   strings.TrimSpace(s.Find(".comic-author").Text()),
			CoverURL: cover,
			PathWord: pathWord,
		})
	})
	if len(results) == 0 {
		return nil, errors.New("no results found")
	}
	return results, nil
}

func (p *KaviarProvider) GetComic(pathWord string) (*models.Comic, error) {
	doc, err := p.fetchDocument(fmt.Sprintf("%s/comic/%s", p.baseURL, pathWord))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.comic-title").Text())
	if title == "" {
		return nil, fmt.Errorf("comic %s not found", pathWord)
	}

	var authors []models.Author
	doc.Find(".comic-authors a").Each(func(i int, s *goquery.Selection) {
		authors = append(authors, models.Author{
			Name:     strings.TrimSpace(s.Text()),
			PathWord: strings.TrimPrefix(s.AttrOr("href", ""), "/author/"),
		})
	})

	status := "ongoing"
	if strings.Contains(doc.Find(".comic-status").Text(), "完結") {
		status = "completed"
	}

	cover, _ := doc.Find(".comic-cover img").Attr("src")
	comic := &models.Comic{
		UUID:       doc.Find("[data-comic-uuid]").AttrOr("data-comic-uuid", pathWord),
		Title:      title,
		PathWord:   pathWord,
		Authors:    authors,
		Status:     status,
		Brief:      strings.TrimSpace(doc.Find(".comic-brief").Text()),
		CoverURL:   cover,
		ProviderID: p.GetInfo().ID,
		Groups:     make(map[string][]models.ChapterInfo),
	}

	// The site organizes chapters in tabs, one per group.
	doc.Find(".chapter-group").Each(func(i int, group *goquery.Selection) {
		groupPathWord := group.AttrOr("data-group", "default")
		groupTitle := strings.TrimSpace(group.Find(".group-title").Text())
		if groupTitle == "" {
			groupTitle = groupPathWord
		}

		items := group.Find("a.chapter-link")
		var chapters []models.ChapterInfo
		items.Each(func(j int, s *goquery.Selection) {
			link := s.AttrOr("href", "")
			// Links look like /comic/{path_word}/chapter/{uuid}.
			_, uuid, found := strings.Cut(link, "/chapter/")
			if !found || uuid == "" {
				return
			}
			order := float64(j + 1)
			if raw, ok := s.Attr("data-order"); ok {
				if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
					order = parsed
				}
			}
			chapters = append(chapters, models.ChapterInfo{
				ChapterUUID:   uuid,
				ChapterTitle:  strings.TrimSpace(s.Text()),
				ComicUUID:     comic.UUID,
				ComicTitle:    comic.Title,
				ComicPathWord: pathWord,
				GroupPathWord: groupPathWord,
				GroupTitle:    groupTitle,
				GroupSize:     items.Length(),
				Order:         order,
			})
		})
		if len(chapters) > 0 {
			comic.Groups[groupPathWord] = chapters
		}
	})
	if len(comic.Groups) == 0 {
		return nil, fmt.Errorf("comic %s has no chapters", pathWord)
	}
	return comic, nil
}

func (p *KaviarProvider) GetPageURLs(comicPathWord, chapterUUID string) ([]string, error) {
	doc, err := p.fetchDocument(fmt.Sprintf("%s/comic/%s/chapter/%s", p.baseURL, comicPathWord, chapterUUID))
	if err != nil {
		return nil, err
	}

	var pages []string
	doc.Find(".reader img.page").Each(func(i int, s *goquery.Selection) {
		// Lazy-loaded pages keep the real URL in data-src.
		if src, ok := s.Attr("data-src"); ok && src != "" {
			pages = append(pages, src)
			return
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			pages = append(pages, src)
		}
	})
	if len(pages) == 0 {
		return nil, errors.New("no pages found")
	}
	return pages, nil
}

func (p *KaviarProvider) fetchDocument(pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", p.baseURL+"/")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kaviar returned status %d for %s", resp.StatusCode, pageURL)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
