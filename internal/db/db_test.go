package db

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"users", "login_codes", "content_sections", "generated_documents", "research_runs"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
	assert.NotContains(t, strings.ToUpper(schema), "DROP ")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "advisor@example.com", NormalizeEmail("  Advisor@Example.COM "))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", *nullIfEmpty("x"))
	assert.Equal(t, "", derefString(nil))
}

func TestDecodeDocumentJSON(t *testing.T) {
	id := uuid.New()
	ids, err := json.Marshal([]uuid.UUID{id})
	require.NoError(t, err)

	var d Document
	require.NoError(t, decodeDocumentJSON(&d, ids, []byte(`["overflow"]`)))
	assert.Equal(t, []uuid.UUID{id}, d.SectionIDs)
	assert.Equal(t, []string{"overflow"}, d.Warnings)

	assert.Error(t, decodeDocumentJSON(&d, []byte(`{`), nil))
}

func TestDocument_JSONOmitsData(t *testing.T) {
	out, err := json.Marshal(Document{Title: "t", Data: []byte("secret-bytes")})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret-bytes")
	assert.Contains(t, string(out), `"size_bytes"`)
}
