package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMaskValue(t *testing.T) {
	t.Run("masks-all-but-last-four", func(t *testing.T) {
		var out bytes.Buffer
		err := RunMaskValue(&out, "123-45-6789")
		require.NoError(t, err)
		assert.Equal(t, "***-**-6789\n", out.String())
	})

	t.Run("short-value-fully-masked", func(t *testing.T) {
		var out bytes.Buffer
		err := RunMaskValue(&out, "123")
		require.NoError(t, err)
		assert.Equal(t, "***-**-****\n", out.String())
	})

	t.Run("empty-value", func(t *testing.T) {
		err := RunMaskValue(&bytes.Buffer{}, "")
		require.Error(t, err)
	})
}
