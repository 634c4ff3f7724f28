package serve

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/marcus/modalkit/internal/store"
	"github.com/marcus/modalkit/pkg/modal"
)

const maxBodySize = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{
		"status":      "ok",
		"instance_id": s.instanceID,
	}, http.StatusOK)
}

// handleListDialogs lists definitions, fuzzy-filtered by ?q=.
func (s *Server) handleListDialogs(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.Search(r.URL.Query().Get("q"))
	if err != nil {
		s.internalError(w, "list dialogs", err)
		return
	}
	defs := make([]store.Definition, len(results))
	for i, res := range results {
		defs[i] = res.Definition
	}
	WriteSuccess(w, DialogsToDTOs(defs), http.StatusOK)
}

// handleGetContent answers in the remote-source shape.
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r.PathValue("name"))
	if !ok {
		return
	}
	writeJSON(w, DialogToContent(def), http.StatusOK)
}

func (s *Server) handleGetDialog(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r.PathValue("name"))
	if !ok {
		return
	}
	WriteSuccess(w, DialogToDTO(def), http.StatusOK)
}

func (s *Server) handlePutDialog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var body DialogBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, ErrValidation, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if fields := ValidateDialogBody(&body); len(fields) > 0 {
		WriteValidation(w, fields)
		return
	}

	def := &store.Definition{Name: r.PathValue("name"), Options: body.Options, HTML: body.HTML}
	if err := s.store.Put(def); err != nil {
		s.internalError(w, "put dialog", err)
		return
	}
	WriteSuccess(w, DialogToDTO(def), http.StatusOK)
}

func (s *Server) handleDeleteDialog(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, ErrNotFound, "dialog not found: "+name, http.StatusNotFound)
			return
		}
		s.internalError(w, "delete dialog", err)
		return
	}
	WriteSuccess(w, map[string]string{"deleted": name}, http.StatusOK)
}

func (s *Server) lookup(w http.ResponseWriter, name string) (*store.Definition, bool) {
	def, err := s.store.Get(name)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, ErrNotFound, "dialog not found: "+name, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.internalError(w, "get dialog", err)
		return nil, false
	}
	return def, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op, "err", err)
	WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
}

// ValidateDialogBody checks every option the way Configure would.
func ValidateDialogBody(body *DialogBody) []FieldError {
	keys := make([]string, 0, len(body.Options))
	for k := range body.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []FieldError
	for _, k := range keys {
		errs := modal.ValidateOptions(map[string]any{k: body.Options[k]})
		if len(errs) == 0 {
			continue
		}
		rule := "type"
		var unknown *modal.UnknownOptionError
		if errors.As(errs[0], &unknown) {
			rule = "known_option"
		}
		fields = append(fields, FieldError{
			Field:   "options." + k,
			Rule:    rule,
			Value:   body.Options[k],
			Message: errs[0].Error(),
		})
	}
	return fields
}
