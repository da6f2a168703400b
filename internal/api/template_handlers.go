// Handlers that let the UI check a directory template before saving it:
// validation reports parse and field errors, preview renders the template
// against a fixed example so the user sees the path it would produce.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/mhiraki/comi-go/internal/pathtmpl"
)

var (
	previewComicContext = pathtmpl.Context{
		"comic_uuid":      "8a1566d0-4e63-4ccc-97c1-47d40e26a839",
		"comic_path_word": "dianjuren",
		"comic_title":     "Chainsaw Man",
		"author":          "Tatsuki Fujimoto",
	}
	previewChapterContext = pathtmpl.Context{
		"comic_uuid":      "8a1566d0-4e63-4ccc-97c1-47d40e26a839",
		"comic_path_word": "dianjuren",
		"comic_title":     "Chainsaw Man",
		"author":          "Tatsuki Fujimoto",
		"group_path_word": "default",
		"group_title":     "默認",
		"chapter_uuid":    "f5325e59-7a8a-4b23-9b77-4b6fb2dbd8a9",
		"chapter_title":   "第13话",
		"order":           13.1,
	}
)

type templatePayload struct {
	Template string           `json:"template"`
	Level    string           `json:"level"`             // "comic" or "chapter"
	Context  pathtmpl.Context `json:"context,omitempty"` // overrides the example values
}

// vocabulary maps the payload's level to the field set and example
// context that template checks run against. Caller-supplied context
// values override the example ones field by field.
func (p templatePayload) vocabulary() (pathtmpl.FieldSet, pathtmpl.Context, bool) {
	var known pathtmpl.FieldSet
	var sample pathtmpl.Context
	switch p.Level {
	case "comic":
		known, sample = pathtmpl.ComicFields, previewComicContext
	case "chapter":
		known, sample = pathtmpl.ChapterFields, previewChapterContext
	default:
		return nil, nil, false
	}

	ctx := make(pathtmpl.Context, len(sample))
	for k, v := range sample {
		ctx[k] = v
	}
	for k, v := range p.Context {
		ctx[k] = v
	}
	return known, ctx, true
}

func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	known, ctx, ok := payload.vocabulary()
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Level must be \"comic\" or \"chapter\"")
		return
	}

	tmpl, err := pathtmpl.Parse(payload.Template)
	if err == nil {
		_, err = tmpl.Render(ctx, known)
	}
	if err != nil {
		RespondWithJSON(w, http.StatusOK, map[string]any{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"fields": tmpl.Fields(),
	})
}

func (s *Server) handlePreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	known, ctx, ok := payload.vocabulary()
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Level must be \"comic\" or \"chapter\"")
		return
	}

	tmpl, err := pathtmpl.Parse(payload.Template)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	segments, err := tmpl.RenderSegments(ctx, known)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"segments": segments,
	})
}
