// Package recordstore serves an Airtable-compatible subset of the records API
// backed by SQLite, for offline use and end-to-end tests.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/service"
	"github.com/sandeepkv93/todoflow/internal/storage"
)

const (
	DefaultPageSize = 100
	maxPageSize     = 100

	// maxBatch is the most records one create or update request may carry.
	maxBatch = 10

	createdTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Airtable error types used in response bodies.
const (
	errAuthRequired   = "AUTHENTICATION_REQUIRED"
	errInvalidRequest = "INVALID_REQUEST_UNKNOWN"
	errUnknownField   = "UNKNOWN_FIELD_NAME"
	errInvalidValue   = "INVALID_VALUE_FOR_COLUMN"
	errInvalidFormula = "INVALID_FILTER_BY_FORMULA"
	errInvalidSort    = "INVALID_SORT_FIELD"
	errRecordNotFound = "MODEL_ID_NOT_FOUND"
	errNotFound       = "NOT_FOUND"
)

type Options struct {
	Repo  storage.Repository
	Token string
	// Now and NewID are overridable in tests.
	Now    func() time.Time
	NewID  func() string
	Logger hclog.Logger
}

type Server struct {
	repo  storage.Repository
	token string
	now   func() time.Time
	newID func() string
	log   hclog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Repo == nil {
		return nil, errors.New("recordstore: repository is required")
	}
	s := &Server{
		repo:  opts.Repo,
		token: opts.Token,
		now:   opts.Now,
		newID: opts.NewID,
		log:   opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewRecordID
	}
	if s.log == nil {
		s.log = hclog.NewNullLogger()
	}
	s.log = s.log.Named("recordstore")
	return s, nil
}

// NewRecordID returns an Airtable-shaped id: "rec" followed by 14 characters.
func NewRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.authenticate)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errNotFound, "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errInvalidRequest, "method not allowed")
	})

	r.Methods(http.MethodGet).Path("/v0/{base}/{table}").HandlerFunc(s.listRecords)
	r.Methods(http.MethodPost).Path("/v0/{base}/{table}").HandlerFunc(s.createRecords)
	r.Methods(http.MethodPatch).Path("/v0/{base}/{table}").HandlerFunc(s.patchRecords)
	r.Methods(http.MethodGet).Path("/v0/{base}/{table}/{id}").HandlerFunc(s.getRecord)
	r.Methods(http.MethodDelete).Path("/v0/{base}/{table}/{id}").HandlerFunc(s.deleteRecord)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.log.Info("handled", "method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code, "bytes", m.Written)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, errAuthRequired, "")
			return
		}
		scheme, token, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "Bearer") || token != s.token {
			writeError(w, http.StatusUnauthorized, errAuthRequired, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type listResponse struct {
	Records []model.Record `json:"records"`
	Offset  string         `json:"offset,omitempty"`
}

type recordsResponse struct {
	Records []model.Record `json:"records"`
}

type writeRequest struct {
	Records []struct {
		ID     string                     `json:"id"`
		Fields map[string]json.RawMessage `json:"fields"`
	} `json:"records"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	table := tableKey(r)
	q := r.URL.Query()

	filter := storage.RecordListFilter{Table: table, SortBy: storage.SortByCreated}
	if field := q.Get("sort[0][field]"); field != "" {
		switch field {
		case string(model.SortFieldTitle):
			filter.SortBy = storage.SortByTitle
		case string(model.SortFieldCreatedTime):
			filter.SortBy = storage.SortByCreated
		default:
			writeError(w, http.StatusUnprocessableEntity, errInvalidSort, fmt.Sprintf("Unknown field name: %q", field))
			return
		}
	}
	switch dir := strings.ToLower(q.Get("sort[0][direction]")); dir {
	case "", string(model.SortAsc):
	case string(model.SortDesc):
		filter.Descending = true
	default:
		writeError(w, http.StatusUnprocessableEntity, errInvalidSort, fmt.Sprintf("Invalid sort direction: %q", dir))
		return
	}

	search, ok, err := ParseFormula(q.Get("filterByFormula"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, errInvalidFormula, err.Error())
		return
	}
	if ok {
		if search.Field != service.TitleField {
			writeError(w, http.StatusUnprocessableEntity, errInvalidFormula, fmt.Sprintf("Unknown field names: %s", search.Field))
			return
		}
		filter.Search = search.Needle
	}

	pageSize := DefaultPageSize
	if raw := q.Get("pageSize"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, "pageSize must be a positive integer")
			return
		}
		pageSize = min(n, maxPageSize)
	}
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, "invalid offset")
			return
		}
		offset = n
	}
	// One extra row tells us whether another page exists.
	filter.Limit = pageSize + 1
	filter.Offset = offset

	rows, err := s.repo.ListRecords(r.Context(), filter)
	if err != nil {
		s.internalError(w, "list records", err)
		return
	}
	resp := listResponse{Records: make([]model.Record, 0, min(len(rows), pageSize))}
	for i, row := range rows {
		if i == pageSize {
			resp.Offset = strconv.Itoa(offset + pageSize)
			break
		}
		resp.Records = append(resp.Records, toWire(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

// createRecords validates every record in the batch before inserting any of them.
func (s *Server) createRecords(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWrite(w, r)
	if !ok {
		return
	}
	patches := make([]storage.RecordPatch, 0, len(req.Records))
	for _, in := range req.Records {
		patch, err := decodeFields(in.Fields)
		if err != nil {
			writeFieldError(w, err)
			return
		}
		patches = append(patches, patch)
	}

	table := tableKey(r)
	resp := recordsResponse{Records: make([]model.Record, 0, len(patches))}
	for _, patch := range patches {
		row := storage.Record{
			ID:          s.newID(),
			Table:       table,
			Title:       patch.Title,
			IsCompleted: patch.IsCompleted,
			CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		}
		if err := s.repo.CreateRecord(r.Context(), row); err != nil {
			s.internalError(w, "create record", err)
			return
		}
		resp.Records = append(resp.Records, toWire(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

// patchRecords checks ids, fields and record existence for the whole batch
// before applying any update.
func (s *Server) patchRecords(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWrite(w, r)
	if !ok {
		return
	}
	table := tableKey(r)
	patches := make([]storage.RecordPatch, 0, len(req.Records))
	for _, in := range req.Records {
		if strings.TrimSpace(in.ID) == "" {
			writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, "record id is required")
			return
		}
		patch, err := decodeFields(in.Fields)
		if err != nil {
			writeFieldError(w, err)
			return
		}
		patches = append(patches, patch)
	}
	for _, in := range req.Records {
		if !s.recordExists(w, r, table, in.ID) {
			return
		}
	}

	resp := recordsResponse{Records: make([]model.Record, 0, len(patches))}
	for i, in := range req.Records {
		row, err := s.repo.PatchRecord(r.Context(), table, in.ID, patches[i])
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errRecordNotFound, fmt.Sprintf("Could not find a record with ID %q", in.ID))
			return
		}
		if err != nil {
			s.internalError(w, "patch record", err)
			return
		}
		resp.Records = append(resp.Records, toWire(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordExists writes the 404 or 500 response itself when it returns false.
func (s *Server) recordExists(w http.ResponseWriter, r *http.Request, table, id string) bool {
	_, err := s.repo.GetRecord(r.Context(), table, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, errRecordNotFound, fmt.Sprintf("Could not find a record with ID %q", id))
		return false
	}
	if err != nil {
		s.internalError(w, "get record", err)
		return false
	}
	return true
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	row, err := s.repo.GetRecord(r.Context(), tableKey(r), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, errRecordNotFound, fmt.Sprintf("Could not find a record with ID %q", id))
		return
	}
	if err != nil {
		s.internalError(w, "get record", err)
		return
	}
	writeJSON(w, http.StatusOK, toWire(row))
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.repo.DeleteRecord(r.Context(), tableKey(r), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, errRecordNotFound, fmt.Sprintf("Could not find a record with ID %q", id))
		return
	}
	if err != nil {
		s.internalError(w, "delete record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "")
}

func tableKey(r *http.Request) string {
	vars := mux.Vars(r)
	return vars["base"] + "/" + vars["table"]
}

func decodeWrite(w http.ResponseWriter, r *http.Request) (writeRequest, bool) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, "could not parse request body")
		return req, false
	}
	if len(req.Records) == 0 || len(req.Records) > maxBatch {
		writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, fmt.Sprintf("records must hold 1 to %d items", maxBatch))
		return req, false
	}
	return req, true
}

type fieldError struct {
	kind  string
	field string
}

func (e *fieldError) Error() string {
	if e.kind == errUnknownField {
		return fmt.Sprintf("Unknown field name: %q", e.field)
	}
	return fmt.Sprintf("Invalid value for field %q", e.field)
}

func decodeFields(raw map[string]json.RawMessage) (storage.RecordPatch, error) {
	var out storage.RecordPatch
	for name, value := range raw {
		switch name {
		case service.TitleField:
			var title string
			if err := json.Unmarshal(value, &title); err != nil {
				return out, &fieldError{kind: errInvalidValue, field: name}
			}
			out.Title = &title
		case "isCompleted":
			var done bool
			if err := json.Unmarshal(value, &done); err != nil {
				return out, &fieldError{kind: errInvalidValue, field: name}
			}
			out.IsCompleted = &done
		default:
			return out, &fieldError{kind: errUnknownField, field: name}
		}
	}
	return out, nil
}

func writeFieldError(w http.ResponseWriter, err error) {
	var fe *fieldError
	if errors.As(err, &fe) {
		writeError(w, http.StatusUnprocessableEntity, fe.kind, fe.Error())
		return
	}
	writeError(w, http.StatusUnprocessableEntity, errInvalidRequest, err.Error())
}

func toWire(row storage.Record) model.Record {
	return model.Record{
		ID:          row.ID,
		CreatedTime: row.CreatedAt.UTC().Format(createdTimeLayout),
		Fields: model.Fields{
			Title:       row.Title,
			IsCompleted: row.IsCompleted,
		},
	}
}

// writeError emits the string form when there is no message, the object form otherwise.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	if message == "" {
		writeJSON(w, status, map[string]any{"error": kind})
		return
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"type": kind, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
