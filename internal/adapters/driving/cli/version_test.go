package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_SkipsServices(t *testing.T) {
	assert.Equal(t, "true", versionCmd.Annotations[skipServices])
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	defer resetFlags()
	orig := version
	version = "1.2.3"
	defer func() { version = orig }()

	out, err := execute("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "sercha-rag version 1.2.3")
}
