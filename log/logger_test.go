package log

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	logger := NewLogger(context.Background(), ll, false, nil)

	logger.Infof("Browser:Launch", "pid:%d", 1234)

	out := buf.String()
	assert.Contains(t, out, "category=\"Browser:Launch\"")
	assert.Contains(t, out, "pid:1234")
}

func TestCategoryFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	logger := NewLogger(context.Background(), ll, false, regexp.MustCompile(`^cdp`))

	logger.Infof("cdp:Execute", "kept")
	logger.Infof("Browser:Launch", "dropped")

	out := buf.String()
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "dropped")
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	logger := NullLogger()
	require.NoError(t, logger.SetLevel("debug"))
	assert.True(t, logger.DebugMode())

	require.NoError(t, logger.SetLevel("warn"))
	assert.False(t, logger.DebugMode())

	assert.Error(t, logger.SetLevel("nope"))
}
