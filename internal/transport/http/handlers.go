package http

import (
	"embed"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/transport"
)

//go:embed static
var staticFiles embed.FS

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the /api routes over a transport.Service.
type Handler struct {
	svc transport.Service
}

// NewHandler creates a Handler.
func NewHandler(svc transport.Service) *Handler {
	return &Handler{svc: svc}
}

// Detect handles POST /api/detect.
//
// @Summary     Detect the language of a text
// @Tags        api
// @Accept      json
// @Produce     json
// @Param       request  body      message.DetectRequest   true  "Text to inspect"
// @Success     200      {object}  message.DetectResponse  "success=false with an error when nothing was detected"
// @Failure     400      {object}  message.DetectResponse  "Invalid request body"
// @Router      /api/detect [post]
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req message.DetectRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondJSON(w, http.StatusOK, message.DetectResponse{Error: "Text is empty"})
		return
	}

	det := h.svc.Detect(r.Context(), req.Text)
	if det == nil {
		respondJSON(w, http.StatusOK, message.DetectResponse{Error: "Could not detect language"})
		return
	}
	respondJSON(w, http.StatusOK, message.DetectResponse{Success: true, Language: det})
}

// Translate handles POST /api/translate.
//
// @Summary     Translate a text
// @Description source_lang may be null or omitted to let the translator detect it.
// @Description target_lang defaults to "en".
// @Tags        api
// @Accept      json
// @Produce     json
// @Param       request  body      message.TranslateRequest   true  "Text and languages"
// @Success     200      {object}  message.TranslationResult  "success=false with an error on failure"
// @Failure     400      {object}  message.StatusResponse     "Invalid request body"
// @Router      /api/translate [post]
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req message.TranslateRequest
	if !decode(w, r, &req) {
		return
	}

	target := req.TargetLang
	if target == "" {
		target = "en"
	}
	source := message.AutoDetect
	if req.SourceLang != nil && *req.SourceLang != "" {
		source = *req.SourceLang
	}

	respondJSON(w, http.StatusOK, h.svc.Translate(r.Context(), req.Text, target, source))
}

// Speak handles POST /api/speak.
//
// @Summary     Speak a text aloud on the server
// @Description lang defaults to "en". Playback continues after the response.
// @Tags        api
// @Accept      json
// @Produce     json
// @Param       request  body      message.SpeakRequest    true  "Text and language"
// @Success     200      {object}  message.StatusResponse  "success=false when synthesis failed"
// @Failure     400      {object}  message.StatusResponse  "Invalid request body"
// @Router      /api/speak [post]
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req message.SpeakRequest
	if !decode(w, r, &req) {
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	// Playback outlives the request, so the request context only bounds synthesis.
	if h.svc.Speak(r.Context(), req.Text, lang) {
		respondJSON(w, http.StatusOK, message.StatusResponse{Success: true})
		return
	}
	msg := "Failed to generate speech"
	respondJSON(w, http.StatusOK, message.StatusResponse{Error: &msg})
}

// StopAudio handles POST /api/stop-audio.
//
// @Summary     Stop audio playback
// @Tags        api
// @Produce     json
// @Success     200  {object}  message.StatusResponse
// @Router      /api/stop-audio [post]
func (h *Handler) StopAudio(w http.ResponseWriter, r *http.Request) {
	h.svc.StopAudio()
	respondJSON(w, http.StatusOK, message.StatusResponse{Success: true})
}

// Languages handles GET /api/languages.
//
// @Summary     List supported target languages
// @Description Keys are language codes, values display names, in display order.
// @Tags        api
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /api/languages [get]
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Languages())
}

// Health handles GET /health.
//
// @Summary     Liveness probe
// @Tags        health
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Index serves the web page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// decode reads a JSON body into v, answering 400 when it is malformed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, message.StatusResponse{Error: &msg})
}
