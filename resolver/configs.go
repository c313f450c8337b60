package resolver

import "github.com/aalemi-dev/observer-lab/metadata"

// DefaultWrapperType is the single-argument event wrapper whose observers are
// compiled into patterns.
const DefaultWrapperType = "javax.enterprise.inject.spi.ProcessAnnotatedType"

// Config controls pattern compilation and metadata caching.
type Config struct {
	// UniversalType is the top type. Observers declared against it match
	// every candidate.
	//
	// Default: "java.lang.Object"
	UniversalType string `yaml:"universal_type" env:"OBSERVER_UNIVERSAL_TYPE"`

	// WrapperType is the raw type of the event wrapper. Only observers
	// declaring WrapperType<X> take part in pattern matching.
	//
	// Default: "javax.enterprise.inject.spi.ProcessAnnotatedType"
	WrapperType string `yaml:"wrapper_type" env:"OBSERVER_WRAPPER_TYPE"`

	// SingleFlight makes the metadata cache fetch each name at most once even
	// under concurrent misses. When false, concurrent misses for the same
	// name may each call the metadata service and the last write wins.
	SingleFlight bool `yaml:"single_flight" env:"OBSERVER_SINGLE_FLIGHT"`
}

func (c Config) withDefaults() Config {
	if c.UniversalType == "" {
		c.UniversalType = metadata.DefaultRootType
	}
	if c.WrapperType == "" {
		c.WrapperType = DefaultWrapperType
	}
	return c
}
