package config

const (
	defaultConfigPath          = "~/.config/roadmap/config.toml"
	defaultDataDir             = "~/.local/share/roadmap"
	defaultLogDir              = "~/.local/share/roadmap/logs"
	defaultCatalogPath         = "~/.config/roadmap/catalog.yaml"
	defaultManifestPath        = "~/.config/roadmap/manifest.yaml"
	defaultFilesDir            = "~/.local/share/roadmap/files"
	defaultAPIBind             = "127.0.0.1:7390"
	defaultRemoteBaseURL       = "http://127.0.0.1:7390"
	defaultRemoteTimeout       = 5
	defaultRemoteWriteAttempts = 2
	defaultStorageBackend      = StorageSQLite
	defaultRedisURL            = "redis://127.0.0.1:6379/0"
	defaultRedisKey            = "roadmap:modules"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Storage backends understood by roadmapd.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			CatalogPath:  defaultCatalogPath,
			ManifestPath: defaultManifestPath,
			FilesDir:     defaultFilesDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Remote: Remote{
			BaseURL:        defaultRemoteBaseURL,
			TimeoutSeconds: defaultRemoteTimeout,
			WriteAttempts:  defaultRemoteWriteAttempts,
		},
		Storage: Storage{
			Backend:  defaultStorageBackend,
			RedisURL: defaultRedisURL,
			RedisKey: defaultRedisKey,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
