package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/garnizeh/pereval/internal/schema"
	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

// maxBodyBytes caps JSON and form bodies; image uploads have their own limit.
const maxBodyBytes = 1 << 20

type PerevalHandler struct {
	repo      repository.PerevalRepo
	validator *schema.Validator
}

func NewPerevalHandler(repo repository.PerevalRepo, v *schema.Validator) *PerevalHandler {
	return &PerevalHandler{repo: repo, validator: v}
}

type submitRequest struct {
	RawData models.RawData `json:"raw_data"`
	Images  models.Images  `json:"images"`
}

type submitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PerevalID int64  `json:"pereval_id"`
}

// Submit accepts either a JSON document {raw_data, images} or the HTML form
// posted by /submit.
func (h *PerevalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var (
		req submitRequest
		err error
	)
	switch mediaType(r) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		req, err = submissionFromForm(w, r)
	default:
		req, err = h.decodeSubmission(w, r)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.repo.CreatePereval(r.Context(), req.RawData, req.Images)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("pereval submitted",
		slog.String("request_id", RequestID(r.Context())),
		slog.Int64("id", id),
		slog.Int("images", len(req.Images)),
	)
	writeJSON(w, submitResponse{Success: true, Message: "pereval added", PerevalID: id}, http.StatusCreated)
}

func (h *PerevalHandler) decodeSubmission(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	var req submitRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if err := h.validator.Validate(r.Context(), schema.Submission, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, repository.Invalid("%v", err)
	}
	if req.RawData == nil {
		return req, repository.Invalid("raw_data is required")
	}
	return req, nil
}

// submissionFromForm builds raw_data from the flat form fields. images is a
// comma-separated list of URLs; fio, email and phone land under raw_data.user.
func submissionFromForm(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	var req submitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var err error
	if mediaType(r) == "multipart/form-data" {
		err = r.ParseMultipartForm(maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return req, repository.Invalid("invalid form: %v", err)
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		return req, repository.Invalid("raw_data is required: form field name is empty")
	}

	raw := models.RawData{"name": name}
	if height := strings.TrimSpace(r.PostFormValue("height")); height != "" {
		if n, ok := numberLiteral(height); ok {
			raw["height"] = n
		} else {
			raw["height"] = height
		}
	}
	if region := strings.TrimSpace(r.PostFormValue("region")); region != "" {
		raw["region"] = region
	}

	user := map[string]any{}
	for _, field := range models.IdentityFields {
		if v := strings.TrimSpace(r.PostFormValue(field)); v != "" {
			user[field] = v
		}
	}
	if len(user) > 0 {
		raw[models.UserKey] = user
	}

	req.RawData = raw
	req.Images = models.Images{}
	for _, u := range strings.Split(r.PostFormValue("images"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			req.Images = append(req.Images, models.URLImage(u))
		}
	}
	return req, nil
}

// numberLiteral reports whether s is exactly one JSON number, so it can be
// stored as a number rather than text.
func numberLiteral(s string) (json.Number, bool) {
	if !json.Valid([]byte(s)) {
		return "", false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

func (h *PerevalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := h.repo.GetPereval(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

// Patch replaces raw_data and/or images of a record that is still new.
func (h *PerevalHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeState(w, r, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeState(w, r, err)
		return
	}
	if err := h.validator.Validate(r.Context(), schema.Patch, body); err != nil {
		writeState(w, r, err)
		return
	}

	var patch models.PerevalPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		writeState(w, r, repository.Invalid("%v", err))
		return
	}

	if err := h.repo.UpdatePereval(r.Context(), id, patch); err != nil {
		writeState(w, r, err)
		return
	}
	writeJSON(w, stateResponse{State: 1, Message: "record updated"}, http.StatusOK)
}

// ListAll returns every record, newest first. Browsers asking for HTML get
// the listing page instead of JSON.
func (h *PerevalHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ListPerevals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if prefersHTML(r) {
		renderListing(w, r, recs)
		return
	}
	writeJSON(w, recs, http.StatusOK)
}

func (h *PerevalHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("user__email") {
		writeError(w, r, repository.Invalid("user__email is required"))
		return
	}

	recs, err := h.repo.ListPerevalsByEmail(r.Context(), q.Get("user__email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, recs, http.StatusOK)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, repository.Invalid("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, repository.Invalid("read body: %v", err)
	}
	return body, nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// prefersHTML reports whether Accept ranks an HTML type above JSON. Types
// are weighted by their q parameter (default 1, q=0 excludes); */* counts as
// JSON, and on equal weight the type listed first wins.
func prefersHTML(r *http.Request) bool {
	htmlQ, jsonQ := -1.0, -1.0
	htmlAt, jsonAt := -1, -1
	for i, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(v, 64); err != nil {
				continue
			}
		}
		switch mt {
		case "text/html", "application/xhtml+xml":
			if q > htmlQ {
				htmlQ, htmlAt = q, i
			}
		case "application/json", "*/*":
			if q > jsonQ {
				jsonQ, jsonAt = q, i
			}
		}
	}

	if htmlQ <= 0 {
		return false
	}
	if htmlQ != jsonQ {
		return htmlQ > jsonQ
	}
	return htmlAt < jsonAt
}
