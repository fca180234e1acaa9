package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

const uploadFormHTML = `<!DOCTYPE html>
<html>
<head><title>Upload Ticket PDF</title></head>
<body>
<h2>Upload Full Ticket PDF</h2>
<form method="POST" enctype="multipart/form-data">
  <input type="file" name="pdf_file" accept="application/pdf" required>
  <button type="submit">Upload PDF</button>
</form>
</body>
</html>
`

// maxUploadMemory is how much of a multipart upload is held in memory before spilling to disk.
const maxUploadMemory = 32 << 20

// UploadPDF returns the HTTP function serving the upload form (GET) and
// accepting a multipart pdf_file (POST).
func UploadPDF(svc UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(uploadFormHTML))
			return
		case http.MethodPost:
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			slog.Warn("Could not parse multipart upload", "error", err)
			http.Error(w, "No file part", http.StatusBadRequest)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("pdf_file")
		if err != nil {
			http.Error(w, "No file part", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename == "" {
			http.Error(w, "No selected file", http.StatusBadRequest)
			return
		}

		logCtx := slog.With("filename", header.Filename, "size", header.Size)

		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			logCtx.Error("Could not read upload", "error", err)
			http.Error(w, "Failed to process PDF", http.StatusInternalServerError)
			return
		}
		if !mtype.Is("application/pdf") {
			logCtx.Warn("Rejected non-PDF upload.", "detected", mtype.String())
			http.Error(w, "Uploaded file is not a PDF", http.StatusBadRequest)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			logCtx.Error("Could not rewind upload", "error", err)
			http.Error(w, "Failed to process PDF", http.StatusInternalServerError)
			return
		}
		logCtx.Info("Received PDF upload.")

		summary, err := svc.Process(r.Context(), file, header.Filename)
		if err != nil || summary == nil || !summary.Success {
			logCtx.Error("Upload processing failed", "error", err)
			http.Error(w, "Failed to process PDF", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "Uploaded %d ticket pages.", summary.ProcessedCount)
	}
}
