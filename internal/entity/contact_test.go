package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRecordEncodesAbsentFieldsAsNull(t *testing.T) {
	rec := ContactRecord{Email: Str("info@abccorp.com")}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	assert.Len(t, m, 8)
	assert.Equal(t, "info@abccorp.com", m["email"])
	for _, key := range []string{"organization_name", "primary_phone_number", "other_phone_number", "industry", "city", "country", "website"} {
		v, ok := m[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}
}

func TestAt(t *testing.T) {
	list := []string{"a", "b"}

	assert.Equal(t, "a", Deref(At(list, 0)))
	assert.Equal(t, "b", Deref(At(list, 1)))
	assert.Nil(t, At(list, 2))
	assert.Nil(t, At(nil, 0))
	assert.Nil(t, Str(""))
}
