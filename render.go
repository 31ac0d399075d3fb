package vellum

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/yosssi/gohtml"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// DefaultTemplates parses the embedded template set.
func DefaultTemplates() (*template.Template, error) {
	templates := template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"rfc3339": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
		"sub":  func(a, b int) int { return a - b },
		"raw": func(s string) template.HTML {
			return template.HTML(s)
		},
	})
	templates, err := templates.ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates : %w", err)
	}
	return templates, nil
}

// render executes the named template with the view-model, optionally
// reindenting the output when pretty_html is configured.
func (app *App) render(w http.ResponseWriter, req *http.Request, name string, vm *ViewModel) {
	var buf bytes.Buffer
	if err := app.Templates.ExecuteTemplate(&buf, name, vm); err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("rendering template %s : %s", name, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	output := buf.Bytes()
	if app.Config != nil && app.Config.PrettyHTML {
		output = gohtml.FormatBytes(output)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(output)
}

func (app *App) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Warn("Failed to write JSON response", "error", err)
	}
}

func (app *App) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Prettify reindents body content for the admin raw-content view. It tries
// JSON first, then XML, then HTML, returning an empty slice when the content
// is none of those.
func Prettify(bodyBytes []byte) ([]byte, error) {
	if len(bodyBytes) == 0 {
		return []byte{}, nil
	}

	trimmedBody := bytes.TrimSpace(bodyBytes)

	// Check JSON
	var jsonData any

	err := json.Unmarshal(trimmedBody, &jsonData)
	if err == nil {
		output, err := json.MarshalIndent(jsonData, "", "  ")
		if err != nil {
			return []byte{}, fmt.Errorf("remarshalling JSON: %w", err)
		}
		return output, nil
	}

	// Check XML
	doc := etree.NewDocument()
	err = doc.ReadFromBytes(trimmedBody)
	if err == nil && doc.Root() != nil {
		doc.Indent(1)
		var output bytes.Buffer
		_, err := doc.WriteTo(&output)
		if err != nil {
			return []byte{}, fmt.Errorf("writing indented XML : %w", err)
		}
		return output.Bytes(), nil
	}

	// Check HTML (mimetype OR prefix)
	contentType := mimetype.Detect(trimmedBody).String()
	if strings.Contains(contentType, "text/html") ||
		(bytes.HasPrefix(trimmedBody, []byte("<")) && !bytes.HasPrefix(trimmedBody, []byte("<?xml"))) {
		output := gohtml.FormatBytes(trimmedBody)

		// Check if gohtml formatted anything
		if !bytes.Equal(output, trimmedBody) && len(output) > 0 {
			return output, nil
		}
	}

	return []byte{}, nil
}
