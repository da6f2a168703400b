package pathtmpl

// FieldSet is the vocabulary of field names a template kind may reference.
// Comic-level templates support a subset of the chapter-level set.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from a list of field names.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name belongs to the set.
func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the field names in the set, unordered.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// ComicFields is the vocabulary for comic directory templates.
var ComicFields = NewFieldSet(
	"comic_uuid",
	"comic_path_word",
	"comic_title",
	"author",
)

// ChapterFields is the vocabulary for chapter directory templates. It is a
// superset of ComicFields.
var ChapterFields = NewFieldSet(
	"comic_uuid",
	"comic_path_word",
	"comic_title",
	"author",
	"group_path_word",
	"group_title",
	"chapter_uuid",
	"chapter_title",
	"order",
)
