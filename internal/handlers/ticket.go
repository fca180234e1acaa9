package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// maxRequestBytes caps the JSON body of ProcessTicket.
const maxRequestBytes = 1 << 20

// ProcessTicket returns the HTTP function that runs the ticket processor for {"recordId": "..."}.
func ProcessTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
			return
		}

		var req models.ProcessTicketRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			slog.Warn("Could not decode request body", "error", err)
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing recordId"})
			return
		}

		fields, err := svc.Process(r.Context(), req.RecordID)
		if err != nil {
			// The specific error is already logged inside the Process method.
			writeJSON(w, common.HTTPStatus(err), models.ErrorResponse{Error: common.MessageOf(err)})
			return
		}

		writeJSON(w, http.StatusOK, models.ProcessTicketResponse{
			Message:         "Ticket processed successfully",
			ExtractedFields: fields,
		})
	}
}
