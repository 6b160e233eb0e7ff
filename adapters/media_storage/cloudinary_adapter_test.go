package media_storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-navigator/internal/config"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

func TestNewCloudinaryAdapter_RequiresCloudName(t *testing.T) {
	_, err := NewCloudinaryAdapter(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestCloudinaryAdapter_PreviewURL(t *testing.T) {
	var cfg config.Config
	cfg.Cloudinary.CloudName = "demo"
	cfg.Cloudinary.ApiKey = "key"
	cfg.Cloudinary.ApiSecret = "secret"

	up, err := NewCloudinaryAdapter(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	url, err := up.PreviewURL("users/u1/resumes/r1")

	require.NoError(t, err)
	assert.Contains(t, url, "res.cloudinary.com/demo/image/upload/")
	assert.Contains(t, url, "pg_1")
	assert.Contains(t, url, "users/u1/resumes/r1")
}
