package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

const snapshotYAML = `
observers:
  - id: audit
    event_type: java.lang.Object
  - id: widgets
    event_type: javax.enterprise.inject.spi.ProcessAnnotatedType<com.example.Widget>
  - id: runnables
    event_type: javax.enterprise.inject.spi.ProcessAnnotatedType<? extends java.lang.Runnable>
    required_annotations: [Transactional, Scheduled]
  - id: strings
    event_type: java.util.List<java.lang.String>
classes:
  - name: com.example.Widget
    supertypes: [java.lang.Runnable]
    annotations: [Transactional]
  - name: com.example.Gadget
    supertypes: [java.lang.Runnable]
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "resolve", "--snapshot", writeSnapshot(t), "com.example.Widget", "com.example.Gadget")
	require.NoError(t, err)
	assert.Equal(t,
		"com.example.Widget\taudit,runnables,widgets\n"+
			"com.example.Gadget\taudit\n",
		out)
}

func TestResolveCommand_UnknownClass(t *testing.T) {
	out, err := execute(t, "resolve", "--snapshot", writeSnapshot(t), "com.example.Widget", "com.example.Missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnresolved)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "com.example.Widget\taudit,runnables,widgets\n")
	assert.Contains(t, out, "com.example.Missing\terror: ")
}

func TestResolveCommand_RequiresSnapshot(t *testing.T) {
	_, err := execute(t, "resolve", "com.example.Widget")
	assert.Error(t, err)

	_, err = execute(t, "resolve", "--snapshot", filepath.Join(t.TempDir(), "none.yaml"), "com.example.Widget")
	assert.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	out, err := execute(t, "compile", "--snapshot", writeSnapshot(t))
	require.NoError(t, err)
	assert.Equal(t,
		"audit\tjava.lang.Object\tuniversal\n"+
			"widgets\tjavax.enterprise.inject.spi.ProcessAnnotatedType<com.example.Widget>\texact(com.example.Widget)\n"+
			"runnables\tjavax.enterprise.inject.spi.ProcessAnnotatedType<? extends java.lang.Runnable>\tupper(java.lang.Runnable) requires Scheduled|Transactional\n"+
			"strings\tjava.util.List<java.lang.String>\tskipped: not a javax.enterprise.inject.spi.ProcessAnnotatedType observer\n",
		out)
}

func TestEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OBSERVER_WRAPPER_TYPE=java.util.List\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("OBSERVER_WRAPPER_TYPE") })

	out, err := execute(t, "--env-file", envFile, "compile", "--snapshot", writeSnapshot(t))
	require.NoError(t, err)
	assert.Contains(t, out, "strings\tjava.util.List<java.lang.String>\texact(java.lang.String)\n")
	assert.Contains(t, out, "widgets\tjavax.enterprise.inject.spi.ProcessAnnotatedType<com.example.Widget>\tskipped: ")

	_, err = execute(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "compile", "--snapshot", writeSnapshot(t))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("OBSERVER_CATALOG_DRIVER", "mysql")
	t.Setenv("OBSERVER_CATALOG_HOST", "db.internal")
	t.Setenv("OBSERVER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OBSERVER_SNAPSHOT_S3_BUCKET", "registry")
	t.Setenv("OBSERVER_METADATA_URL", "http://meta.internal")
	t.Setenv("OBSERVER_SINGLE_FLIGHT", "true")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Catalog.Driver)
	assert.Equal(t, "db.internal", cfg.Catalog.Connection.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Dispatch.Brokers)
	assert.Equal(t, "observer.candidates", cfg.Dispatch.InputTopic)
	assert.Equal(t, "registry", cfg.Registry.ObjectStore.Bucket)
	assert.Equal(t, "observers.yaml", cfg.Registry.ObjectStore.Key)
	assert.Equal(t, "http://meta.internal", cfg.Metadata.URL)
	assert.True(t, cfg.Resolver.SingleFlight)
	assert.Equal(t, sourceCatalog, cfg.MetadataSource)
	assert.Nil(t, cfg.Metrics.Address)
	assert.NoError(t, cfg.validate())

	cfg.MetadataSource = "ldap"
	assert.Error(t, cfg.validate())
}

func TestAppOptions_Validate(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	for _, source := range []string{sourceCatalog, sourceHTTP, sourceSnapshot} {
		t.Run(source, func(t *testing.T) {
			c := cfg
			c.MetadataSource = source
			assert.NoError(t, fx.ValidateApp(appOptions(c)))
		})
	}
}

func TestServeCommand_RejectsUnknownSource(t *testing.T) {
	_, err := execute(t, "serve", "--metadata", "ldap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metadata source")
}
