package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/avohilabs/destiin"
	"github.com/yosssi/gohtml"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// expensePageData is the template context of the receipt upload page.
type expensePageData struct {
	destiin.ExpensePage
	UploadURL string
}

// renderExpensePage renders the upload page and indents the markup.
func renderExpensePage(page destiin.ExpensePage) ([]byte, error) {
	var buf bytes.Buffer
	data := expensePageData{ExpensePage: page, UploadURL: uploadPath}
	if err := pageTemplates.ExecuteTemplate(&buf, "expense_claim.html", data); err != nil {
		return nil, fmt.Errorf("rendering expense claim page: %w", err)
	}
	return gohtml.FormatBytes(buf.Bytes()), nil
}

func (s *Server) handleExpensePage(w http.ResponseWriter, r *http.Request) {
	body, err := renderExpensePage(s.app.ExpensePage())
	if err != nil {
		s.logger.Error("rendering page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
