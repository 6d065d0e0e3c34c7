package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	p, err := ObjectPath(SpacesFolder, "front.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "spaces/"))
	assert.True(t, strings.HasSuffix(p, ".png"))

	p, err = ObjectPath(AvatarFolder, "me.jpeg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, ".jpeg"))

	other, err := ObjectPath(AvatarFolder, "me.jpeg", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, p, other)

	_, err = ObjectPath(SpacesFolder, "doc.pdf", "application/pdf")
	assert.Error(t, err)
}

func TestNewSupabaseStorage(t *testing.T) {
	s := NewSupabaseStorage("https://abc.supabase.co/", "anon", "")
	assert.Equal(t, "https://abc.supabase.co/storage/v1", s.url)
	assert.Equal(t, DefaultBucket, s.bucket)
}
