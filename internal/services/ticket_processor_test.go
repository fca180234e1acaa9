package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

const ticketPDFURL = "https://dl.example.com/rec123/ticket.pdf"

type processorFixture struct {
	records    *fakeRecords
	downloader *fakeDownloader
	extractor  *fakeExtractor
	completer  *fakeCompleter
	processor  *TicketProcessor
}

func newProcessorFixture(reply string) *processorFixture {
	f := &processorFixture{
		records: &fakeRecords{records: map[string]*models.TicketRecord{
			"rec123": {ID: "rec123", Fields: map[string]any{
				"Ticket Text": "Order for Hamilton",
				"Attachment": []any{
					map[string]any{"url": ticketPDFURL, "filename": "ticket.pdf"},
				},
			}},
			"recNoAttachment": {ID: "recNoAttachment", Fields: map[string]any{"Ticket Text": "x"}},
		}},
		downloader: &fakeDownloader{data: map[string][]byte{ticketPDFURL: []byte("%PDF-1.4 two pages")}},
		extractor:  &fakeExtractor{text: "Hamilton Richard Rodgers Theatre Section Orchestra Row B Seat 12\n\n"},
		completer:  &fakeCompleter{reply: reply},
	}
	f.processor = NewTicketProcessor(testFields, TicketProcessorDeps{
		Records:    f.records,
		Downloader: f.downloader,
		Extractor:  f.extractor,
		Agent:      NewTicketAgent(f.completer, nil),
	})
	return f
}

const hamiltonReply = `{
  "Show Name": "Hamilton",
  "Show Date": "",
  "Section": "Orchestra",
  "Row": "B",
  "Seat": "12",
  "Agent Order ID": "",
  "Page Number": "",
  "Venue": "",
  "Price": "",
  "Time": ""
}`

func TestProcessHamiltonScenario(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)

	fields, err := f.processor.Process(context.Background(), "rec123")
	require.NoError(t, err)

	assert.Equal(t, []string{ticketPDFURL}, f.downloader.calls)
	assert.Equal(t, []byte("%PDF-1.4 two pages"), f.extractor.got)
	require.Len(t, f.completer.prompts, 1)
	assert.Contains(t, f.completer.prompts[0], "Order for Hamilton")
	assert.Contains(t, f.completer.prompts[0], "Section Orchestra Row B Seat 12")

	require.Len(t, f.records.updates, 1)
	update := f.records.updates[0]
	assert.Equal(t, "rec123", update.ID)
	assert.Len(t, update.Fields, 10)
	for _, name := range models.TicketFieldNames {
		assert.Contains(t, update.Fields, name)
	}
	assert.Equal(t, "Hamilton", update.Fields[models.FieldShowName])
	assert.Equal(t, "Orchestra", update.Fields[models.FieldSection])
	assert.Equal(t, "B", update.Fields[models.FieldRow])
	assert.Equal(t, "12", update.Fields[models.FieldSeat])
	for _, name := range []string{models.FieldShowDate, models.FieldAgentOrderID, models.FieldPageNumber, models.FieldVenue, models.FieldPrice, models.FieldTime} {
		assert.Nil(t, update.Fields[name], name)
	}

	assert.Equal(t, "Hamilton", fields.Get(models.FieldShowName))
	assert.Nil(t, fields[models.FieldVenue])
}

func TestProcessUnparseableReplyWritesNulls(t *testing.T) {
	f := newProcessorFixture("I'm sorry, I can't help with that.")

	fields, err := f.processor.Process(context.Background(), "rec123")
	require.NoError(t, err)

	require.Len(t, f.records.updates, 1)
	written := f.records.updates[0].Fields
	assert.Len(t, written, 10)
	for name, v := range written {
		assert.Nil(t, v, name)
	}
	assert.Len(t, fields, 10)
}

func TestProcessMissingRecordID(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)

	_, err := f.processor.Process(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, common.CodeBadRequest, common.CodeOf(err))
	assert.Equal(t, "Missing recordId", common.MessageOf(err))
	assert.Empty(t, f.records.updates)
}

func TestProcessNoAttachmentIsBadRequestWithoutWrite(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)

	_, err := f.processor.Process(context.Background(), "recNoAttachment")
	require.Error(t, err)
	assert.Equal(t, common.CodeBadRequest, common.CodeOf(err))
	assert.Equal(t, "No PDF attachment found", common.MessageOf(err))
	assert.Empty(t, f.records.updates)
	assert.Empty(t, f.downloader.calls)
}

func TestProcessFetchFailure(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)

	_, err := f.processor.Process(context.Background(), "recMissing")
	require.Error(t, err)
	assert.Equal(t, common.CodeUpstreamFetch, common.CodeOf(err))
	assert.Contains(t, common.MessageOf(err), "Failed to fetch record")
	assert.Contains(t, common.MessageOf(err), "NOT_FOUND")
	assert.Empty(t, f.records.updates)
}

func TestProcessDownloadFailure(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)
	f.downloader.err = errBoom

	_, err := f.processor.Process(context.Background(), "rec123")
	require.Error(t, err)
	assert.Equal(t, common.CodeDownload, common.CodeOf(err))
	assert.Equal(t, "Failed to download PDF", common.MessageOf(err))
	assert.Empty(t, f.completer.prompts)
	assert.Empty(t, f.records.updates)
}

func TestProcessExtractFailure(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)
	f.extractor.err = common.NewAppError(common.CodeParse, "not a valid PDF", nil)

	_, err := f.processor.Process(context.Background(), "rec123")
	require.Error(t, err)
	assert.Equal(t, common.CodeParse, common.CodeOf(err))
	assert.Empty(t, f.records.updates)
}

func TestProcessInferenceFailure(t *testing.T) {
	f := newProcessorFixture("")
	f.completer.err = errBoom

	_, err := f.processor.Process(context.Background(), "rec123")
	require.Error(t, err)
	assert.Equal(t, common.CodeInference, common.CodeOf(err))
	assert.Empty(t, f.records.updates)
}

func TestProcessUpdateFailure(t *testing.T) {
	f := newProcessorFixture(hamiltonReply)
	f.records.updateErr = common.NewAppError(common.CodeRemote, `{"error":"INVALID_PERMISSIONS"}`, nil)

	_, err := f.processor.Process(context.Background(), "rec123")
	require.Error(t, err)
	assert.Equal(t, common.CodeRemoteWrite, common.CodeOf(err))
	assert.Contains(t, common.MessageOf(err), "INVALID_PERMISSIONS")
}
