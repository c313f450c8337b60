package registry

import "time"

// Config selects where the observer snapshot is loaded from. The object
// store is used when ObjectStore.Bucket is set, the local file otherwise.
type Config struct {
	// Path of a local YAML or JSON snapshot.
	Path string `yaml:"path" env:"OBSERVER_SNAPSHOT_PATH"`

	ObjectStore ObjectStoreConfig `yaml:"object_store" envPrefix:"OBSERVER_SNAPSHOT_S3_"`
}

// ObjectStoreConfig locates a snapshot in S3-compatible storage.
type ObjectStoreConfig struct {
	// Endpoint is host:port without scheme, e.g. "minio:9000".
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY" json:"-"` //nolint:gosec

	// UseSSL selects https.
	UseSSL bool `yaml:"use_ssl" env:"USE_SSL"`

	Region string `yaml:"region" env:"REGION"`

	Bucket string `yaml:"bucket" env:"BUCKET"`

	// Key is the object name. Its extension selects the format.
	//
	// Default: "observers.yaml"
	Key string `yaml:"key" env:"KEY" envDefault:"observers.yaml"`

	// Timeout bounds a single load or publish.
	//
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"30s"`
}
