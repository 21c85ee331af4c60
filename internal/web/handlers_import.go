package web

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/web/templates"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to disk.
const multipartMemory = 8 << 20

func (s *Server) importPage() templates.Page {
	return templates.Page{Title: "Import", Nav: templates.NavImport}
}

func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.importPage(), templates.ImportPage(templates.ImportView{MaxFileSize: s.cfg.Import.MaxFileSize}))
}

// uploadedFile opens the "file" field of a multipart upload.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	// The form wrapper adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	if header.Size > s.cfg.Import.MaxFileSize {
		file.Close()
		return nil, nil, core.ErrFileTooLarge
	}
	return file, header, nil
}

// handleImport reads the uploaded spreadsheet and bulk-creates its rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.importFailed(w, r, "Import Failed", err)
		return
	}
	defer file.Close()

	result, err := s.service.ImportSpreadsheet(r.Context(), header.Filename, file)
	if err != nil {
		s.importFailed(w, r, "Import Failed", err)
		return
	}

	s.notify(r, notify.Success("Import Successful", "Bulk import completed. "+result.Summary()))
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.render(w, r, http.StatusOK, s.importPage(), templates.ImportPage(templates.ImportView{
		MaxFileSize: s.cfg.Import.MaxFileSize,
		Result:      result,
	}))
}

// handleImportPreview shows the first rows of the upload without
// submitting anything.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.importFailed(w, r, "Preview Failed", err)
		return
	}
	defer file.Close()

	preview, err := s.service.PreviewSpreadsheet(r.Context(), header.Filename, file, s.cfg.Import.PreviewRows)
	if err != nil {
		s.importFailed(w, r, "Preview Failed", err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, preview)
		return
	}
	s.render(w, r, http.StatusOK, s.importPage(), templates.ImportPage(templates.ImportView{
		MaxFileSize: s.cfg.Import.MaxFileSize,
		Preview:     preview,
	}))
}

func (s *Server) importFailed(w http.ResponseWriter, r *http.Request, title string, err error) {
	msg := core.MapError(err)
	status := statusFor(err)
	logging.FromContext(r.Context()).Warn("import failed", "error", err, "code", msg.Code)

	s.notify(r, notify.Error(title, "There was an error importing the file. Please try again."))
	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	s.render(w, r, status, s.importPage(), templates.ImportPage(templates.ImportView{
		MaxFileSize: s.cfg.Import.MaxFileSize,
		Alert:       &msg,
	}))
}
