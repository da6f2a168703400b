package copymanga

// Every v3 API endpoint wraps its payload in this envelope.
type apiResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Results T      `json:"results"`
}

// --- Search Types ---

type searchResults struct {
	List   []searchItem `json:"list"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type searchItem struct {
	Name     string       `json:"name"`
	PathWord string       `json:"path_word"`
	Cover    string       `json:"cover"`
	Author   []authorData `json:"author"`
}

type authorData struct {
	Name     string `json:"name"`
	PathWord string `json:"path_word"`
}

// --- Comic Detail Types ---

type comicResults struct {
	Comic   comicData            `json:"comic"`
	Groups  map[string]groupData `json:"groups"`
	Popular int64                `json:"popular"`
}

type comicData struct {
	UUID     string       `json:"uuid"`
	Name     string       `json:"name"`
	PathWord string       `json:"path_word"`
	Author   []authorData `json:"author"`
	Status   labeledValue `json:"status"`
	Brief    string       `json:"brief"`
	Cover    string       `json:"cover"`
}

type labeledValue struct {
	Value   int64  `json:"value"`
	Display string `json:"display"`
}

type groupData struct {
	PathWord string `json:"path_word"`
	Count    int    `json:"count"`
	Name     string `json:"name"`
}

// --- Group Chapter List Types ---

type chapterListResults struct {
	List   []chapterData `json:"list"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type chapterData struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Count   int    `json:"count"`
	Ordered int64  `json:"ordered"`
	Type    int64  `json:"type"`
}

// --- Favorites Types ---

type favoriteResults struct {
	List   []favoriteItem `json:"list"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type favoriteItem struct {
	UUID  int64         `json:"uuid"`
	Comic favoriteComic `json:"comic"`
}

type favoriteComic struct {
	UUID            string       `json:"uuid"`
	Name            string       `json:"name"`
	PathWord        string       `json:"path_word"`
	Author          []authorData `json:"author"`
	Cover           string       `json:"cover"`
	DatetimeUpdated string       `json:"datetime_updated"`
	LastChapterName string       `json:"last_chapter_name"`
}

// --- Chapter Page Types ---

type pageResults struct {
	Chapter pageChapter `json:"chapter"`
}

type pageChapter struct {
	UUID     string        `json:"uuid"`
	Name     string        `json:"name"`
	Contents []pageContent `json:"contents"`
	// Words holds the true page index for each entry in Contents; the
	// server shuffles Contents on purpose.
	Words []int `json:"words"`
}

type pageContent struct {
	URL string `json:"url"`
}
