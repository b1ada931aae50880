// Package config loads the environment each memeSRC function runs with.
// Variable names follow what Amplify injects into the functions.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

const (
	defaultRegion    = "us-east-1"
	defaultEnv       = "dev"
	defaultFFmpeg    = "ffmpeg"
	defaultTempDir   = "/tmp"
	defaultSender    = "memeSRC <no-reply@memesrc.com>"
	defaultLogLevel  = "info"
	layerFFmpegPath  = "/opt/bin/ffmpeg"
	bucketEnvVar     = "STORAGE_MEMESRCGENERATEDIMAGES_BUCKETNAME"
	graphqlEnvVar    = "API_MEMESRC_GRAPHQLAPIENDPOINTOUTPUT"
	userPoolEnvVar   = "AUTH_MEMESRCC3C71449_USERPOOLID"
	recoveryFromVar  = "RECOVERY_EMAIL_SOURCE"
	ffmpegPathEnvVar = "FFMPEG_PATH"
)

// Common is shared by every function.
type Common struct {
	Env          string
	Region       string
	LogLevel     string
	FunctionName string
}

// FrameExtractor configures the frame extraction function.
type FrameExtractor struct {
	Common
	Bucket     string
	FFmpegPath string
	TempDir    string
}

// UserFunction configures the user/vote API function.
type UserFunction struct {
	Common
	GraphQLEndpoint string
}

// RecoverUsername configures the username recovery function.
type RecoverUsername struct {
	Common
	UserPoolID  string
	EmailSource string
}

func loadCommon() Common {
	region := getenv("AWS_REGION", "")
	if region == "" {
		region = getenv("REGION", defaultRegion)
	}
	return Common{
		Env:          getenv("ENV", defaultEnv),
		Region:       region,
		LogLevel:     getenv("LOG_LEVEL", defaultLogLevel),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
	}
}

// LoadFrameExtractor reads and validates the frame extractor environment.
func LoadFrameExtractor() (FrameExtractor, error) {
	cfg := FrameExtractor{
		Common:     loadCommon(),
		Bucket:     os.Getenv(bucketEnvVar),
		FFmpegPath: getenv(ffmpegPathEnvVar, ""),
		TempDir:    getenv("TMPDIR", defaultTempDir),
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = defaultFFmpeg
		if _, err := os.Stat(layerFFmpegPath); err == nil {
			cfg.FFmpegPath = layerFFmpegPath
		}
	}
	if cfg.Bucket == "" {
		return cfg, missing(bucketEnvVar)
	}
	return cfg, nil
}

// LoadUserFunction reads and validates the user function environment.
func LoadUserFunction() (UserFunction, error) {
	cfg := UserFunction{
		Common:          loadCommon(),
		GraphQLEndpoint: os.Getenv(graphqlEnvVar),
	}
	if cfg.GraphQLEndpoint == "" {
		return cfg, missing(graphqlEnvVar)
	}
	if !strings.HasPrefix(cfg.GraphQLEndpoint, "https://") && !strings.HasPrefix(cfg.GraphQLEndpoint, "http://") {
		return cfg, fmt.Errorf("%s must be an absolute URL, got %q", graphqlEnvVar, cfg.GraphQLEndpoint)
	}
	return cfg, nil
}

// LoadRecoverUsername reads and validates the recovery function environment.
func LoadRecoverUsername() (RecoverUsername, error) {
	cfg := RecoverUsername{
		Common:      loadCommon(),
		UserPoolID:  os.Getenv(userPoolEnvVar),
		EmailSource: getenv(recoveryFromVar, defaultSender),
	}
	if cfg.UserPoolID == "" {
		return cfg, missing(userPoolEnvVar)
	}
	return cfg, nil
}

// AWS loads the SDK configuration for the given region.
func AWS(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// ErrMissing is wrapped by every missing-variable error.
var ErrMissing = errors.New("required environment variable not set")

func missing(name string) error {
	return fmt.Errorf("%s: %w", name, ErrMissing)
}

func getenv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
