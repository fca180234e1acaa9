package services

import (
	"strings"

	"github.com/Lllllllleong/ticketflow/internal/models"
)

// SanitizeFields maps empty and whitespace-only values to nil so the backend
// receives explicit nulls. The result always carries the ten ticket fields.
func SanitizeFields(fields models.ExtractedFields) models.ExtractedFields {
	cleaned := models.NewExtractedFields()
	for _, name := range models.TicketFieldNames {
		v := fields[name]
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		s := *v
		cleaned[name] = &s
	}
	return cleaned
}
