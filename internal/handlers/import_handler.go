package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/internal/storage"
	"crm-backend/pkg/utils"
)

// maxImportUpload caps CSV uploads at 10 MB.
const maxImportUpload = 10 << 20

type ImportHandler struct {
	Service  *services.ImportService
	Archiver *storage.Archiver
}

func NewImportHandler(s *services.ImportService, archiver *storage.Archiver) *ImportHandler {
	return &ImportHandler{Service: s, Archiver: archiver}
}

// ParseUpload accepts a multipart CSV upload and returns headers, rows and a
// suggested field mapping.
func (h *ImportHandler) ParseUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxImportUpload); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		utils.Error(w, http.StatusBadRequest, "Only .csv files are accepted")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImportUpload))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	result, err := h.Service.Parse(bytes.NewReader(data))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Archival is best effort. A missing bucket never blocks an import.
	if h.Archiver != nil {
		key, err := h.Archiver.ArchiveImport(r.Context(), userID, header.Filename, data)
		if err != nil {
			log.Printf("[Import] Failed to archive %s: %v", header.Filename, err)
		} else {
			result.ArchiveKey = key
		}
	}

	utils.JSON(w, http.StatusOK, result)
}

// ValidateRows previews a mapping against the parsed rows without writing
// anything.
func (h *ImportHandler) ValidateRows(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		utils.Error(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req models.ValidateImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	utils.JSON(w, http.StatusOK, h.Service.Validate(&req))
}

// RunImport performs the batched upsert and returns the summary totals.
func (h *ImportHandler) RunImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req models.RunImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	summary, err := h.Service.Run(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}

// DownloadTemplate serves a sample CSV with the recognized headers.
func (h *ImportHandler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="customers-template.csv"`)
	w.Write([]byte(services.SampleTemplate()))
}
