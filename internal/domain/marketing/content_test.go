package marketing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContent(t *testing.T) {
	c, err := NewContent(" Spring collection ", "https://www.tiktok.com/@buneko/video/1", "")
	require.NoError(t, err)
	assert.Equal(t, "Spring collection", c.Title)
	assert.Equal(t, PlatformTikTok, c.Platform)

	_, err = NewContent("", "https://www.tiktok.com/x", "")
	assert.Error(t, err)

	_, err = NewContent("Title", "ftp://files.example.com/x", "")
	assert.Error(t, err)

	_, err = NewContent("Title", "not a url", "")
	assert.Error(t, err)
}
