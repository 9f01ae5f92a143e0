package paraglidejson_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscat/internal/adapters/parser/paraglidejson"
	"tscat/internal/domain"
)

func TestParse(t *testing.T) {
	in := `{"$schema": "https://inlang.com/schema/inlang-message-format", "save": "Enregistrer", "Annuler": "Annuler", "count": 3}`
	cat, err := paraglidejson.New().Parse([]byte(in))
	require.NoError(t, err)
	require.Len(t, cat.Contexts, 1)

	msgs := cat.Contexts[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, &domain.Message{Source: "Annuler", Type: domain.TypeUnfinished}, msgs[0])
	assert.Equal(t, &domain.Message{ID: "save", Source: "Enregistrer", Type: domain.TypeUnfinished}, msgs[1])
}

func TestParseInvalid(t *testing.T) {
	_, err := paraglidejson.New().Parse([]byte(`["not", "an", "object"]`))
	assert.ErrorContains(t, err, "invalid json")
}
