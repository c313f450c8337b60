package metrics

// DefaultAddress is where the scrape endpoint listens when Config.Address is nil.
const DefaultAddress = ":9090"

// Config controls the Prometheus registry and its scrape endpoint.
type Config struct {
	// Address of the /metrics HTTP server. Nil means DefaultAddress; an
	// empty string disables the server while metrics are still collected.
	Address *string `yaml:"address" env:"OBSERVER_METRICS_ADDRESS"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace" env:"OBSERVER_METRICS_NAMESPACE" envDefault:"observer"`

	// ServiceName is added as a constant "service" label.
	ServiceName string `yaml:"service_name" env:"OBSERVER_SERVICE_NAME" envDefault:"observer-resolver"`

	// RuntimeCollectors registers the Go, process and build-info collectors.
	RuntimeCollectors bool `yaml:"runtime_collectors" env:"OBSERVER_METRICS_RUNTIME" envDefault:"true"`
}

// Ptr returns a pointer to s, for filling Config.Address.
func Ptr(s string) *string {
	return &s
}
