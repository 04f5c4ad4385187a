package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Score *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

type sample struct {
	Name  string `json:"name" default:"anon" validate:"max=8"`
	Mood  string `json:"mood" validate:"omitempty,oneof=bullish bearish neutral"`
	Inner inner  `json:"inner"`
}

func TestDefaultsAndStruct(t *testing.T) {
	s := &sample{}
	require.NoError(t, DefaultsAndStruct(context.Background(), s))
	assert.Equal(t, "anon", s.Name)
}

func TestStruct_FieldErrors(t *testing.T) {
	score := 120.0
	s := &sample{Name: "far-too-long", Mood: "euphoric", Inner: inner{Score: &score}}

	err := Struct(context.Background(), s)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 3)

	byField := map[string]FieldError{}
	for _, fe := range errs {
		byField[fe.Field] = fe
	}
	assert.Equal(t, "ERR_MAX", byField["name"].Code)
	assert.Equal(t, "ERR_ONEOF", byField["mood"].Code)
	assert.Equal(t, []string{"bullish", "bearish", "neutral"}, byField["mood"].Params["options"])
	assert.Equal(t, "ERR_LTE", byField["inner.score"].Code)
	assert.Equal(t, "inner.score must be less than or equal to 100", byField["inner.score"].Message)
}
