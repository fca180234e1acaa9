package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentsFromJSON(t *testing.T) {
	var fields map[string]any
	raw := `{"Attachment":[{"id":"att1","url":"https://files.example/t.pdf","filename":"t.pdf"}],"Ticket Text":"Row B"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))

	rec := &TicketRecord{ID: "rec1", Fields: fields}
	assert.Equal(t, []Attachment{{URL: "https://files.example/t.pdf", Filename: "t.pdf"}}, rec.Attachments("Attachment"))
	assert.Equal(t, "Row B", rec.Text("Ticket Text"))
}

func TestAttachmentsMissingOrMalformed(t *testing.T) {
	rec := &TicketRecord{Fields: map[string]any{"Attachment": "not-a-list", "Ticket Text": 42}}
	assert.Empty(t, rec.Attachments("Attachment"))
	assert.Empty(t, rec.Attachments("Other"))
	assert.Equal(t, "", rec.Text("Ticket Text"))

	var nilRec *TicketRecord
	assert.Nil(t, nilRec.Attachments("Attachment"))
	assert.Equal(t, "", nilRec.Text("Ticket Text"))
}

func TestAttachmentsTyped(t *testing.T) {
	want := []Attachment{{URL: "https://a", Filename: "ticket-page-1.pdf"}}
	rec := &TicketRecord{Fields: map[string]any{"Attachment": want}}
	assert.Equal(t, want, rec.Attachments("Attachment"))
}

func TestExtractedFieldsValuesAndJSON(t *testing.T) {
	f := NewExtractedFields()
	require.Len(t, f, 10)
	show := "Hamilton"
	f[FieldShowName] = &show

	values := f.Values()
	assert.Equal(t, "Hamilton", values[FieldShowName])
	assert.Nil(t, values[FieldVenue])
	assert.Equal(t, "Hamilton", f.Get(FieldShowName))
	assert.Equal(t, "", f.Get(FieldVenue))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 10)
	assert.Nil(t, decoded[FieldSeat])
	assert.Equal(t, "Hamilton", decoded[FieldShowName])
}
