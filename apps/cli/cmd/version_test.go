package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuild := version, buildTime
	t.Cleanup(func() { version, buildTime = oldVersion, oldBuild })
	version, buildTime = "1.2.3", "2026-01-01"

	var buf bytes.Buffer
	printVersion(&buf)

	assert.Contains(t, buf.String(), "fauxhttp 1.2.3 (built 2026-01-01)")
	assert.Contains(t, buf.String(), runtime.GOOS+"/"+runtime.GOARCH)
}
