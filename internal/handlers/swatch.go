package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"swatch-backend/internal/middleware"
	"swatch-backend/internal/services"
	"swatch-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// SwatchHandler handles swatch upload and listing requests
type SwatchHandler struct {
	swatchService  *services.SwatchService
	maxUploadBytes int64
}

// NewSwatchHandler creates a new swatch handler
func NewSwatchHandler(swatchService *services.SwatchService, maxUploadBytes int64) *SwatchHandler {
	return &SwatchHandler{
		swatchService:  swatchService,
		maxUploadBytes: maxUploadBytes,
	}
}

// CountResponse is the body of GET /total-swach-count
type CountResponse struct {
	Count int64 `json:"count"`
}

// UploadResponse is the body of a successful upload
type UploadResponse struct {
	Message    string  `json:"message"`
	SNo        int64   `json:"s_no"`
	SwachCode  string  `json:"swach_code"`
	SwatchPath string  `json:"swatch_path"`
	ModelPath  *string `json:"model_path"`
}

// Count handles GET /total-swach-count
func (h *SwatchHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.swatchService.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count swatches")
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, CountResponse{Count: count})
}

// ListAll handles GET /list-all
func (h *SwatchHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.swatchService.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list swatches")
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Upload handles POST /upload-swatch
func (h *SwatchHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondValidation(w, map[string]string{"body": "expected multipart/form-data"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	code := r.FormValue("swach_code")
	file, fileHeader, fileErr := r.FormFile("file")

	fields := make(map[string]string)
	if code == "" {
		fields["swach_code"] = "field required"
	}
	if fileErr != nil {
		fields["file"] = "field required"
	}
	if len(fields) > 0 {
		if file != nil {
			file.Close()
		}
		respondValidation(w, fields)
		return
	}
	defer file.Close()

	primary := uploadedFile(file, fileHeader)

	var model *storage.File
	if modelFile, modelHeader, err := r.FormFile("model_file"); err == nil {
		defer modelFile.Close()
		f := uploadedFile(modelFile, modelHeader)
		model = &f
	}

	record, err := h.swatchService.Upload(ctx, code, primary, model)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCode) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().
			Err(err).
			Str("swach_code", code).
			Str("filename", fileHeader.Filename).
			Str("subject", middleware.GetSubject(ctx)).
			Msg("Upload error")
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Info().
		Int64("s_no", record.SNo).
		Str("swach_code", record.SwachCode).
		Str("swatch_path", record.SwatchPath).
		Bool("has_model", record.ModelPath != nil).
		Msg("Swatch uploaded")

	respondJSON(w, http.StatusOK, UploadResponse{
		Message:    "Upload successful",
		SNo:        record.SNo,
		SwachCode:  record.SwachCode,
		SwatchPath: record.SwatchPath,
		ModelPath:  record.ModelPath,
	})
}

func uploadedFile(f multipart.File, header *multipart.FileHeader) storage.File {
	return storage.File{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
	}
}
