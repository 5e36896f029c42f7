package blog

import (
	"os"

	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

var (
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrContentSourceUnknown       = runtimeconfig.ErrContentSourceUnknown
	ErrRemoteBaseURLRequired      = runtimeconfig.ErrRemoteBaseURLRequired
	ErrRemoteBaseURLInvalid       = runtimeconfig.ErrRemoteBaseURLInvalid
	ErrCacheRequiresSQLStorage    = runtimeconfig.ErrCacheRequiresSQLStorage
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrAuthSecretRequired         = runtimeconfig.ErrAuthSecretRequired
	ErrAuthTTLInvalid             = runtimeconfig.ErrAuthTTLInvalid
	ErrServerAddrRequired         = runtimeconfig.ErrServerAddrRequired
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	ContentConfig  = runtimeconfig.ContentConfig
	RemoteConfig   = runtimeconfig.RemoteConfig
	RenderConfig   = runtimeconfig.RenderConfig
	AuthConfig     = runtimeconfig.AuthConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	MetricsConfig  = runtimeconfig.MetricsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv loads .env files and overlays BLOG_* variables onto DefaultConfig.
func ConfigFromEnv() (Config, error) {
	if err := runtimeconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return runtimeconfig.FromEnv(DefaultConfig(), os.LookupEnv)
}
