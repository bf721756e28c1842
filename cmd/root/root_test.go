package root

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandMetadata(t *testing.T) {
	assert.Equal(t, "booking-reports", Cmd.Use)
	assert.NotEmpty(t, Cmd.Short)
	assert.NotNil(t, Cmd.PersistentPreRun)
}

func TestInitSilencesUsage(t *testing.T) {
	Init()
	assert.True(t, Cmd.SilenceUsage)
}
