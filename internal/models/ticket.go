package models

// Field names the extraction agent fills in, in prompt order.
const (
	FieldShowName     = "Show Name"
	FieldShowDate     = "Show Date"
	FieldSection      = "Section"
	FieldRow          = "Row"
	FieldSeat         = "Seat"
	FieldAgentOrderID = "Agent Order ID"
	FieldPageNumber   = "Page Number"
	FieldVenue        = "Venue"
	FieldPrice        = "Price"
	FieldTime         = "Time"
)

// TicketFieldNames lists the ten extracted fields in a stable order.
var TicketFieldNames = []string{
	FieldShowName,
	FieldShowDate,
	FieldSection,
	FieldRow,
	FieldSeat,
	FieldAgentOrderID,
	FieldPageNumber,
	FieldVenue,
	FieldPrice,
	FieldTime,
}

// Attachment is one file reference held in a record's attachment field.
type Attachment struct {
	URL      string `json:"url" firestore:"url"`
	Filename string `json:"filename,omitempty" firestore:"filename,omitempty"`
}

// TicketRecord is one row of the tabular backend.
type TicketRecord struct {
	ID     string
	Fields map[string]any
}

// Attachments decodes the named attachment field. Both the JSON shape returned
// by REST backends and the typed shape written by this service are accepted.
func (r *TicketRecord) Attachments(field string) []Attachment {
	if r == nil || r.Fields == nil {
		return nil
	}
	switch v := r.Fields[field].(type) {
	case []Attachment:
		return v
	case []map[string]any:
		out := make([]Attachment, 0, len(v))
		for _, m := range v {
			out = append(out, attachmentFromMap(m))
		}
		return out
	case []any:
		out := make([]Attachment, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, attachmentFromMap(m))
			}
		}
		return out
	default:
		return nil
	}
}

// Text returns a string field, or "" when it is missing or not a string.
func (r *TicketRecord) Text(field string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	s, _ := r.Fields[field].(string)
	return s
}

func attachmentFromMap(m map[string]any) Attachment {
	url, _ := m["url"].(string)
	name, _ := m["filename"].(string)
	return Attachment{URL: url, Filename: name}
}

// ExtractedFields maps each ticket field name to its value. A nil value means
// "no value" and is written to the backend as null.
type ExtractedFields map[string]*string

// NewExtractedFields returns a mapping with all ten keys set to nil.
func NewExtractedFields() ExtractedFields {
	f := make(ExtractedFields, len(TicketFieldNames))
	for _, name := range TicketFieldNames {
		f[name] = nil
	}
	return f
}

// Get returns the value for name, or "" when it has none.
func (f ExtractedFields) Get(name string) string {
	if v := f[name]; v != nil {
		return *v
	}
	return ""
}

// Values converts the mapping into backend field values, with nil for unset fields.
func (f ExtractedFields) Values() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = *v
	}
	return out
}

// PageUpload is the result of uploading and recording one split-out page.
type PageUpload struct {
	ID     string `json:"id"`
	Page   int    `json:"page"`
	PDFURL string `json:"pdf_url"`
}

// PageFailure records why a page was left out of the summary.
type PageFailure struct {
	Page  int    `json:"page"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Stages a page can fail in.
const (
	StageUpload = "upload"
	StageRecord = "record"
)

// UploadSummary is returned by the upload orchestrator.
type UploadSummary struct {
	Success        bool          `json:"success"`
	ProcessedCount int           `json:"processed_count"`
	PageCount      int           `json:"page_count"`
	Tickets        []PageUpload  `json:"tickets"`
	Failures       []PageFailure `json:"failures,omitempty"`
}
