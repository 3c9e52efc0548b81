package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTypeWalksWrappedChain(t *testing.T) {
	base := InvalidPlan("basic", "negative price")
	wrapped := fmt.Errorf("select: %w", base)

	assert.True(t, IsType(wrapped, TypeInvalidPlanData))
	assert.False(t, IsType(wrapped, TypeNoPlansAvailable))
	assert.Equal(t, TypeInvalidPlanData, TypeOf(wrapped))
}

func TestIsTypeFindsInnerTypedCause(t *testing.T) {
	err := Provider("catalog fetch failed", NoPlansAvailable())

	assert.True(t, IsType(err, TypeProvider))
	assert.True(t, IsType(err, TypeNoPlansAvailable))
	assert.Equal(t, TypeProvider, TypeOf(err))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, TypeInternal, TypeOf(fmt.Errorf("boom")))
	assert.False(t, IsType(nil, TypeInput))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(TypeParsing, "decode plans.yaml", fmt.Errorf("bad indent"))
	assert.Equal(t, "[PARSING_ERROR] decode plans.yaml: bad indent", err.Error())

	plain := InvalidPlan("pro", "negative price_per_connection")
	assert.Equal(t, `[INVALID_PLAN_DATA] plan "pro": negative price_per_connection`, plain.Error())
	assert.Equal(t, "pro", plain.Context["plan_id"])
}
