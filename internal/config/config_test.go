package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrameExtractor(t *testing.T) {
	t.Run("requires bucket", func(t *testing.T) {
		t.Setenv(bucketEnvVar, "")

		_, err := LoadFrameExtractor()
		require.ErrorIs(t, err, ErrMissing)
		assert.Contains(t, err.Error(), bucketEnvVar)
	})

	t.Run("reads bucket and ffmpeg override", func(t *testing.T) {
		t.Setenv(bucketEnvVar, "memesrc-generated-images")
		t.Setenv(ffmpegPathEnvVar, "/usr/local/bin/ffmpeg")
		t.Setenv("TMPDIR", "")
		t.Setenv("ENV", "beta")

		cfg, err := LoadFrameExtractor()
		require.NoError(t, err)
		assert.Equal(t, "memesrc-generated-images", cfg.Bucket)
		assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.FFmpegPath)
		assert.Equal(t, "/tmp", cfg.TempDir)
		assert.Equal(t, "beta", cfg.Env)
	})
}

func TestLoadCommon_RegionPrecedence(t *testing.T) {
	t.Run("AWS_REGION wins", func(t *testing.T) {
		t.Setenv("AWS_REGION", "eu-west-1")
		t.Setenv("REGION", "us-west-2")
		assert.Equal(t, "eu-west-1", loadCommon().Region)
	})

	t.Run("falls back to REGION", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("REGION", "us-west-2")
		assert.Equal(t, "us-west-2", loadCommon().Region)
	})

	t.Run("defaults to us-east-1", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("REGION", "")
		assert.Equal(t, "us-east-1", loadCommon().Region)
	})

	t.Run("env defaults to dev", func(t *testing.T) {
		t.Setenv("ENV", "")
		assert.Equal(t, "dev", loadCommon().Env)
	})
}

func TestLoadUserFunction(t *testing.T) {
	t.Run("requires endpoint", func(t *testing.T) {
		t.Setenv(graphqlEnvVar, "")
		_, err := LoadUserFunction()
		require.ErrorIs(t, err, ErrMissing)
	})

	t.Run("rejects relative endpoint", func(t *testing.T) {
		t.Setenv(graphqlEnvVar, "example.appsync-api.us-east-1.amazonaws.com/graphql")
		_, err := LoadUserFunction()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMissing)
	})

	t.Run("valid endpoint", func(t *testing.T) {
		t.Setenv(graphqlEnvVar, "https://example.appsync-api.us-east-1.amazonaws.com/graphql")
		cfg, err := LoadUserFunction()
		require.NoError(t, err)
		assert.Equal(t, "https://example.appsync-api.us-east-1.amazonaws.com/graphql", cfg.GraphQLEndpoint)
	})
}

func TestLoadRecoverUsername(t *testing.T) {
	t.Run("requires user pool", func(t *testing.T) {
		t.Setenv(userPoolEnvVar, "")
		_, err := LoadRecoverUsername()
		require.ErrorIs(t, err, ErrMissing)
	})

	t.Run("default sender", func(t *testing.T) {
		t.Setenv(userPoolEnvVar, "us-east-1_abc123")
		t.Setenv(recoveryFromVar, "")
		cfg, err := LoadRecoverUsername()
		require.NoError(t, err)
		assert.Equal(t, "us-east-1_abc123", cfg.UserPoolID)
		assert.Equal(t, "memeSRC <no-reply@memesrc.com>", cfg.EmailSource)
	})
}
