package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// TicketExtractionSystemPrompt is used by completers that support a system instruction.
const TicketExtractionSystemPrompt = "You are a helpful assistant that extracts structured ticket information from text. You must output your response as a single valid JSON object."

const ticketExtractionPrompt = `
You are a helpful assistant that extracts structured ticket information from text.

Extract the following fields and return a JSON object with these exact keys:
%s.

If a field is missing in the text, return its value as an empty string.

Example output:

{
  "Show Name": "Hamilton",
  "Show Date": "2025-07-01",
  "Section": "Orchestra",
  "Row": "B",
  "Seat": "12",
  "Agent Order ID": "123456789",
  "Page Number": "1",
  "Venue": "Richard Rodgers Theatre",
  "Price": "$120",
  "Time": "7:30 PM"
}

Ticket Text:
%s

PDF Text:
%s
`

// BuildTicketPrompt renders the extraction prompt for one ticket.
func BuildTicketPrompt(ticketText, pdfText string) string {
	return fmt.Sprintf(ticketExtractionPrompt, strings.Join(models.TicketFieldNames, ", "), ticketText, pdfText)
}

// TicketAgent implements FieldAgent on top of any Completer.
type TicketAgent struct {
	completer Completer
	logger    *slog.Logger
}

// NewTicketAgent creates a TicketAgent.
func NewTicketAgent(completer Completer, logger *slog.Logger) *TicketAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketAgent{completer: completer, logger: logger}
}

// Extract asks the model for the ticket fields. A reply that is not a JSON
// object is logged and yields ten empty values instead of an error.
func (a *TicketAgent) Extract(ctx context.Context, ticketText, pdfText string) (models.ExtractedFields, string, error) {
	prompt := BuildTicketPrompt(ticketText, pdfText)

	reply, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("Call to language model failed", "error", err)
		return nil, "", common.NewAppError(common.CodeInference, fmt.Sprintf("Inference API error: %v", err), err)
	}
	reply = strings.TrimSpace(reply)

	fields, err := ParseFieldReply(reply)
	if err != nil {
		a.logger.Warn("Failed to parse JSON from model response", "error", err, "response", reply)
		return emptyFields(), reply, nil
	}
	return fields, reply, nil
}

// ParseFieldReply decodes a model reply into the ten ticket fields.
// Scalars are stringified, unknown keys are dropped and missing keys become "".
func ParseFieldReply(reply string) (models.ExtractedFields, error) {
	cleaned := StripCodeFence(reply)

	// UseNumber keeps integers such as long order ids exact.
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, common.NewAppError(common.CodeReplyParse, "model reply is not a JSON object", err)
	}

	fields := emptyFields()
	for _, name := range models.TicketFieldNames {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if s, ok := stringify(v); ok {
			fields[name] = &s
		}
	}
	return fields, nil
}

// StripCodeFence removes a surrounding ```json or ``` markdown fence.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```json"))
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```"))
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}
	return text
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		// null, objects and arrays have no sensible single-cell value.
		return "", false
	}
}

func emptyFields() models.ExtractedFields {
	f := make(models.ExtractedFields, len(models.TicketFieldNames))
	for _, name := range models.TicketFieldNames {
		empty := ""
		f[name] = &empty
	}
	return f
}
