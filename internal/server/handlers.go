package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/assets"
	"github.com/matzehuels/mdbook-svg/pkg/book"
	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/naming"
	"github.com/matzehuels/mdbook-svg/pkg/pipeline"
)

// previewPath is the chapter path previews are processed under when the
// request names none.
const previewPath = "preview.md"

// renderRequest is the JSON body of POST /render. A text/plain body is
// taken as the source itself.
type renderRequest struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
}

type renderResponse struct {
	Backend string         `json:"backend"`
	Views   []viewResponse `json:"views"`
}

type viewResponse struct {
	Name    string   `json:"name"`
	RelID   string   `json:"rel_id"`
	Title   string   `json:"title"`
	Path    []string `json:"path"`
	Content string   `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.renderer.Backend(),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		jsonError(w, err)
		return
	}

	req := renderRequest{Source: string(body)}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		req = renderRequest{}
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
			return
		}
	}
	if strings.TrimSpace(req.Source) == "" {
		jsonError(w, errors.New(errors.ErrCodeInvalidInput, "source is required"))
		return
	}
	name := naming.Slug(req.Name)
	if name == "" {
		name = "diagram"
	}

	res, err := s.renderer.Render(r.Context(), req.Source)
	if err != nil {
		jsonError(w, err)
		return
	}
	if res.Title == "" && req.Name != "" {
		res.Title = req.Name
	}
	views, err := diagram.Flatten(res)
	if err != nil {
		jsonError(w, err)
		return
	}

	out := renderResponse{Backend: s.renderer.Backend(), Views: make([]viewResponse, len(views))}
	for i, v := range views {
		out.Views[i] = viewResponse{
			Name:    diagram.ViewName(name, v.RelID),
			RelID:   v.RelID,
			Title:   v.Title,
			Path:    v.Path,
			Content: s.opts.Theme.Rewrite(v.Content),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreview processes a markdown chapter like the preprocessor does,
// always inline, and renders it to an HTML page. With ?format=markdown the
// processed markdown is returned instead.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		jsonError(w, err)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		path = previewPath
	}
	ch := &book.Chapter{Name: path, Content: string(body), Path: &path}
	_, err = s.runner.Run(r.Context(), []*book.Chapter{ch}, pipeline.Options{
		Marker:  s.opts.Marker,
		Theme:   s.opts.Theme,
		Workers: s.opts.Workers,
		DryRun:  true,
		Logger:  s.log,
	})
	if err != nil {
		jsonError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, ch.Content)
		return
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>")
	page.Write(assets.CSS())
	page.WriteString("</style></head><body>\n")
	if err := s.markdown.Convert([]byte(ch.Content), &page); err != nil {
		jsonError(w, errors.Wrap(errors.ErrCodeInternal, err, "convert markdown"))
		return
	}
	page.WriteString("</body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page.Bytes())
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeUnterminatedBlock:
		return http.StatusBadRequest
	case errors.ErrCodeParse, errors.ErrCodeRender, errors.ErrCodeStructuralMismatch:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Error: err.Error(), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
