package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"notedeck/internal/contextutil"
	"notedeck/internal/service"
	"notedeck/internal/storage"
)

// PreviewHandler serves quicknote markdown content as rendered HTML pages.
type PreviewHandler struct {
	noteService *service.NoteService
	parser      goldmark.Markdown
	template    *template.Template
}

// previewPageData holds template data for rendered preview pages.
type previewPageData struct {
	Title   string
	Content template.HTML
}

// NewPreviewHandler creates a new handler for rendering note previews.
func NewPreviewHandler(noteService *service.NoteService) *PreviewHandler {
	tmpl := template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    :root {
      color-scheme: dark;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 820px;
      line-height: 1.7;
      background: #0b1020;
      color: #e4ecff;
    }
    h1 {
      margin-top: 0;
      color: #fff;
    }
    article {
      background: rgba(15, 23, 42, 0.85);
      border: 1px solid rgba(99, 102, 241, 0.2);
      border-radius: 12px;
      padding: 2rem;
    }
    pre {
      background: #0f172a;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 8px;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
      background: rgba(99, 102, 241, 0.18);
      padding: 2px 5px;
      border-radius: 6px;
    }
    pre code {
      background: transparent;
      padding: 0;
    }
    blockquote {
      border-left: 4px solid rgba(96, 165, 250, 0.6);
      padding-left: 1rem;
      margin-left: 0;
      color: #93c5fd;
    }
    a {
      color: #60a5fa;
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &PreviewHandler{
		noteService: noteService,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Table,
				extension.TaskList,
				extension.Strikethrough,
				extension.Linkify,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

// ServeHTTP renders the requested quicknote as HTML.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	noteID := chi.URLParam(r, "noteID")

	note, err := h.noteService.GetByID(ctx, noteID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load note")
		return
	}

	if note.EffectiveType() != storage.NoteTypeQuick {
		writeError(w, http.StatusBadRequest, "Only quicknotes can be previewed as markdown")
		return
	}

	htmlContent, err := h.renderMarkdown([]byte(note.Content.PlainText()))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "note_id", noteID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render note")
		return
	}

	pageData := previewPageData{
		Title:   note.Title,
		Content: htmlContent,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute preview template", "note_id", noteID, "error", err)
	}
}

// renderMarkdown converts markdown source to sanitized HTML content.
func (h *PreviewHandler) renderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.parser.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
