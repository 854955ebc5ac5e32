package registry

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const objectSchema = `{"type":"object","properties":{"sessionId":{"type":"string"}}}`

func activity(id string) Activity {
	return Activity{
		ID:           id,
		DisplayName:  "Verify Identity",
		Category:     "kyc",
		TaskType:     id,
		InputSchema:  json.RawMessage(objectSchema),
		OutputSchema: json.RawMessage(objectSchema),
	}
}

// ==========================
// Validate
// ==========================

func TestValidate(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{activity("kyc.identity.verify"), activity("crm.opportunity.get")}}
	assert.NoError(t, Validate(reg))
}

func TestValidate_Failures(t *testing.T) {
	badSchema := activity("kyc.identity.verify")
	badSchema.OutputSchema = json.RawMessage(`{"type":"not-a-type"}`)

	mismatch := activity("kyc.identity.verify")
	mismatch.TaskType = "kyc-identity-verify"

	noCategory := activity("kyc.identity.verify")
	noCategory.Category = ""

	tests := []struct {
		name       string
		activities []Activity
		want       string
	}{
		{"empty", nil, "no activities"},
		{"naming", []Activity{activity("verify-identity")}, "domain.subdomain.action"},
		{"duplicate", []Activity{activity("kyc.identity.verify"), activity("kyc.identity.verify")}, "duplicate"},
		{"task type mismatch", []Activity{mismatch}, "must match"},
		{"category", []Activity{noCategory}, "Category"},
		{"schema", []Activity{badSchema}, "output schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&ActivityRegistry{Activities: tt.activities})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

// ==========================
// Save / Load
// ==========================

func TestSaveAndLoad_SortsByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := &ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{activity("qualify.business.find"), activity("crm.opportunity.get")},
	}
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	assert.Equal(t, "crm.opportunity.get", loaded.Activities[0].ID)
	assert.JSONEq(t, objectSchema, string(loaded.Activities[0].InputSchema))
	assert.NoError(t, Validate(loaded))
}
