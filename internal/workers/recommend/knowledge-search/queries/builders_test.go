package queries

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBuildQuery(t *testing.T) {
	req, err := BuildQuery(KnowledgeQuery{Index: "product_knowledge", Text: "receipt printer", Size: 50})
	require.NoError(t, err)

	assert.Equal(t, []string{"product_knowledge"}, req.Index)
	require.NotNil(t, req.Size)
	assert.Equal(t, maxSize, *req.Size)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "receipt printer", gjson.GetBytes(body, "query.multi_match.query").String())
	assert.Equal(t, `["title^2","content"]`, gjson.GetBytes(body, "query.multi_match.fields").Raw)
}

func TestBuildQuery_DefaultSize(t *testing.T) {
	req, err := BuildQuery(KnowledgeQuery{Index: "kb", Text: "tap to pay"})
	require.NoError(t, err)
	assert.Equal(t, defaultSize, *req.Size)
}

func TestBuildQuery_Errors(t *testing.T) {
	_, err := BuildQuery(KnowledgeQuery{Text: "x"})
	assert.ErrorIs(t, err, ErrMissingIndex)

	_, err = BuildQuery(KnowledgeQuery{Index: "kb", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
