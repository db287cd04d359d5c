package api

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type listingRow struct {
	ID     int64
	Title  string
	Height string
	Email  string
	Status models.Status
	Added  string
}

type pageData struct {
	Title string
	Rows  []listingRow
}

type PageHandler struct {
	repo repository.PerevalRepo
}

func NewPageHandler(repo repository.PerevalRepo) *PageHandler {
	return &PageHandler{repo: repo}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ListPerevals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	renderListing(w, r, recs)
}

func (h *PageHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "submit.html", pageData{Title: "Добавить перевал"})
}

func renderListing(w http.ResponseWriter, r *http.Request, recs []models.PassRecord) {
	rows := make([]listingRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, listingRow{
			ID:     rec.ID,
			Title:  firstText(rec.RawData, "beautyTitle", "title", "name"),
			Height: firstText(rec.RawData, "height"),
			Email:  rec.RawData.Email(),
			Status: rec.Status,
			Added:  rec.DateAdded.Format(time.DateTime),
		})
	}
	renderPage(w, r, "index.html", pageData{Title: "Перевалы", Rows: rows})
}

func renderPage(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("render page",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("page", name),
			slog.Any("err", err),
		)
	}
}

// firstText returns the first non-empty top-level raw_data value among keys.
func firstText(raw models.RawData, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return ""
}
