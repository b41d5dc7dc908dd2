package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/parselmouth/binding"
	perrors "github.com/feather-lang/parselmouth/errors"
)

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, binding.CheckStatus("ilaver", 0))

	err := binding.CheckStatus("dgesvd", -4)
	require.ErrorIs(t, err, perrors.ErrNumericalStatus)
	assert.Contains(t, err.Error(), "dgesvd")
	assert.Contains(t, err.Error(), "-4")
}
