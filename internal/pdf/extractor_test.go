package pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/ticketflow/internal/common"
)

func TestExtractTextPageOrder(t *testing.T) {
	doc := buildPDF(t, "Hamilton Section Orchestra Row B Seat 12", "Richard Rodgers Theatre")

	text, err := NewTextExtractor().ExtractText(context.Background(), doc)
	require.NoError(t, err)

	first := strings.Index(text, "Hamilton")
	second := strings.Index(text, "Richard Rodgers")
	require.GreaterOrEqual(t, first, 0, "text: %q", text)
	require.Greater(t, second, first, "text: %q", text)
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.Contains(t, text, "Seat 12")
}

func TestExtractTextSkipsBlankPages(t *testing.T) {
	doc := buildPDF(t, "", "Only page with text", "")

	text, err := NewTextExtractor().ExtractText(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(text, "\n"), "blank page contributed a segment: %q", text)
	assert.Equal(t, "Only page with text", strings.TrimSpace(text))
}

func TestAppendPageTextKeepsWhitespacePages(t *testing.T) {
	var b strings.Builder
	appendPageText(&b, "Page one")
	appendPageText(&b, "")
	appendPageText(&b, "   ")
	appendPageText(&b, "Page three")

	assert.Equal(t, "Page one\n   \nPage three\n", b.String())
}

func TestExtractTextRejectsInvalidInput(t *testing.T) {
	ex := NewTextExtractor()

	_, err := ex.ExtractText(context.Background(), []byte("definitely not a pdf"))
	require.Error(t, err)
	assert.Equal(t, common.CodeParse, common.CodeOf(err))

	_, err = ex.ExtractText(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeParse, common.CodeOf(err))
}
