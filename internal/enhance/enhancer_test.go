package enhance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemarev/schemarev/internal/entity"
)

type stubCompleter struct {
	reply string
	err   error
	calls []string
}

func (s *stubCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	s.calls = append(s.calls, messages[len(messages)-1].Content)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestDescribeFillsLowConfidence(t *testing.T) {
	stub := &stubCompleter{reply: "Tracks customer contact records."}
	enh := NewEnhancer(stub, 0.80, nil)

	entities := []entity.Entity{
		{Name: "contact", Table: "tb_contact", Confidence: 0.55},
		{Name: "invoice", Table: "tb_invoice", Confidence: 0.95},
	}
	out := enh.Describe(context.Background(), entities)

	assert.Equal(t, "Tracks customer contact records.", out[0].Description)
	assert.Empty(t, out[1].Description)
	require.Len(t, stub.calls, 1)
	assert.Contains(t, stub.calls[0], "tb_contact")
}

func TestDescribeSkipsExistingDescription(t *testing.T) {
	stub := &stubCompleter{reply: "should not be used"}
	enh := NewEnhancer(stub, 0.80, nil)

	entities := []entity.Entity{
		{Name: "contact", Table: "tb_contact", Confidence: 0.40, Description: "Already described."},
	}
	out := enh.Describe(context.Background(), entities)

	assert.Equal(t, "Already described.", out[0].Description)
	assert.Empty(t, stub.calls)
}

func TestDescribeContinuesAfterError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("status 500")}
	enh := NewEnhancer(stub, 0.80, nil)

	entities := []entity.Entity{
		{Name: "contact", Table: "tb_contact", Confidence: 0.40},
		{Name: "scratch", Table: "tb_scratch", Confidence: 0.50},
	}
	out := enh.Describe(context.Background(), entities)

	assert.Empty(t, out[0].Description)
	assert.Empty(t, out[1].Description)
	assert.Len(t, stub.calls, 2)
}

func TestDescribePromptContents(t *testing.T) {
	ent := entity.Entity{
		Name:       "contact",
		Table:      "tb_contact",
		Confidence: 0.55,
		Fields: []entity.Field{
			{Name: "pk_contact", Type: "BIGSERIAL"},
			{Name: "full_name", Type: "VARCHAR(120)"},
		},
		Refs: []entity.Ref{
			{Field: "fk_customer_org", Target: "customer_org"},
		},
	}

	prompt := describePrompt(ent)
	assert.Contains(t, prompt, "Table tb_contact")
	assert.Contains(t, prompt, "pk_contact BIGSERIAL")
	assert.Contains(t, prompt, "References: customer_org via fk_customer_org")
}
