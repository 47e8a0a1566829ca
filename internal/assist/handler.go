package assist

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/vision-assist/internal/middleware"
	"github.com/ayush/vision-assist/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Describer answers a free-text query about an image.
type Describer interface {
	Describe(ctx context.Context, image []byte, mimeType, query string) (string, error)
}

// Transcriber converts base64 audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioB64, format string) (string, error)
}

// Synthesizer converts text into WAV bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioStager stages generated audio artifacts and cleans them up.
type AudioStager interface {
	Put(ctx context.Context, key string, data []byte) error
	Cleanup(ctx context.Context, key string)
}

// Handler holds the vision-query and transcription HTTP handlers.
type Handler struct {
	vision Describer
	stt    Transcriber
	tts    Synthesizer
	audio  AudioStager
}

func NewHandler(vision Describer, stt Transcriber, tts Synthesizer, audio AudioStager) *Handler {
	return &Handler{vision: vision, stt: stt, tts: tts, audio: audio}
}

// Transcribe forwards base64 audio to the speech-recognition service.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req models.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Audio == "" {
		http.Error(w, `{"error":"audio is required"}`, http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = "wav"
	}
	if _, err := base64.StdEncoding.DecodeString(req.Audio); err != nil {
		http.Error(w, `{"error":"audio is not valid base64"}`, http.StatusBadRequest)
		return
	}

	text, err := h.stt.Transcribe(r.Context(), req.Audio, req.Format)
	if err != nil {
		log.Printf("transcribe error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to process audio",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.TranscribeResponse{Text: text})
}

// Query runs the full pipeline: decode image, ask the vision backend,
// synthesize the answer, and stream WAV bytes back.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(middleware.IdentityKey).(*models.Identity)

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.UserInput == "" {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
		return
	}
	if req.ImgBase64 == "" {
		http.Error(w, `{"error":"image is required"}`, http.StatusBadRequest)
		return
	}

	imgData, mimeType, err := ParseImage(req.ImgBase64)
	if err != nil {
		http.Error(w, `{"error":"image is not valid base64"}`, http.StatusBadRequest)
		return
	}
	imgData, mimeType = Downscale(imgData, mimeType)

	answer, err := h.vision.Describe(r.Context(), imgData, mimeType, req.UserInput)
	if err != nil {
		log.Printf("vision error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to process image query",
		})
		return
	}

	wav, err := h.tts.Synthesize(r.Context(), answer)
	if err != nil {
		log.Printf("synthesize error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to generate audio",
		})
		return
	}

	// Stage the artifact for this request; losing it is not an error.
	owner := "anonymous"
	if id != nil {
		owner = id.UserID
	}
	key := fmt.Sprintf("responses/%s/%s.wav", owner, uuid.New().String())
	if err := h.audio.Put(r.Context(), key, wav); err != nil {
		log.Printf("audio stage error: %v", err)
		key = ""
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", "attachment; filename=response.wav")
	w.Write(wav)

	// Fire-and-forget cleanup after the response is written.
	if key != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.audio.Cleanup(ctx, key)
		}()
	}
}
