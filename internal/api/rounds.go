package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toastmaster/toastmaster/internal/session"
	"github.com/toastmaster/toastmaster/pkg/surface"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

type createRequest struct {
	Topping *bool `json:"topping"`
}

type cutRequest struct {
	Cuts *int `json:"cuts"`
}

type butterRequest struct {
	Cells []int `json:"cells"`
}

type suggestRequest struct {
	Preference string `json:"preference"`
}

type toppingRequest struct {
	Choice *int    `json:"choice"`
	Custom *string `json:"custom"`
}

// decode reads a JSON body into dst. An empty body is allowed only when
// optional is set.
func decode(r *http.Request, dst any, optional bool) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if optional {
			return nil
		}
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func roundID(r *http.Request) string {
	return chi.URLParam(r, "roundID")
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.rounds.Create(r.Context(), req.Topping)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.Get(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.rounds.Delete(r.Context(), roundID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.Begin(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleCut(w http.ResponseWriter, r *http.Request) {
	var req cutRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Cuts == nil {
		writeError(w, http.StatusBadRequest, "cuts is required")
		return
	}
	v, err := h.rounds.Cut(r.Context(), roundID(r), *req.Cuts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleToastStart(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.ToastStart(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleToastStop(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.ToastStop(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleButter(w http.ResponseWriter, r *http.Request) {
	var req butterRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.rounds.Butter(r.Context(), roundID(r), req.Cells)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.rounds.SuggestToppings(r.Context(), roundID(r), req.Preference)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleTopping(w http.ResponseWriter, r *http.Request) {
	var req toppingRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (req.Choice == nil) == (req.Custom == nil) {
		writeError(w, http.StatusBadRequest, "exactly one of choice or custom is required")
		return
	}

	var (
		v   session.View
		err error
	)
	if req.Choice != nil {
		v, err = h.rounds.ChooseTopping(r.Context(), roundID(r), *req.Choice)
	} else {
		v, err = h.rounds.CustomTopping(r.Context(), roundID(r), *req.Custom)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleVerdict returns the verdict as JSON, or rendered as text or
// markdown when ?format= asks for it.
func (h *Handler) handleVerdict(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.Verdict(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, v)
		return
	}
	renderer, err := surface.ForFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, &v); err != nil {
		h.fail(w, r, err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == "markdown" || format == "md" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	v, err := h.rounds.Restart(r.Context(), roundID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
