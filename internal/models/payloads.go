package models

// These structs define the JSON payloads of the HTTP functions.

// ProcessTicketRequest is the input for the ProcessTicket function.
type ProcessTicketRequest struct {
	RecordID string `json:"recordId"`
}

// ProcessTicketResponse is the success output of the ProcessTicket function.
type ProcessTicketResponse struct {
	Message         string          `json:"message"`
	ExtractedFields ExtractedFields `json:"extracted_fields"`
}

// ErrorResponse is returned by the JSON functions on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadHandoff is the argument passed to the downstream workflow after an upload.
type UploadHandoff struct {
	Source         string       `json:"source,omitempty"`
	PageCount      int          `json:"pageCount"`
	ProcessedCount int          `json:"processedCount"`
	Tickets        []PageUpload `json:"tickets"`
}
