package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRegistry_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("KHOBOR_TEST_SECRET", "s3cret")
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: " sqs-main "
    type: QUEUE
    queue:
      provider: aws-sqs
      aws:
        uri: https://sqs.ap-south-1.amazonaws.com/123/news
        region: ap-south-1
        access_key_id: AKIA
        secret_access_key: ${KHOBOR_TEST_SECRET}
  - id: hook
    type: http
    enabled: false
    http:
      url: https://hooks.example.com/news
      headers:
        X-Token: abc
        " ": dropped
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.All(), 2)

	sqsCfg, ok := reg.ByID("sqs-main")
	require.True(t, ok)
	assert.Equal(t, TypeQueue, sqsCfg.Type)
	assert.Equal(t, "s3cret", sqsCfg.Queue.AWS.SecretAccessKey)
	assert.True(t, sqsCfg.EnabledValue())

	hook, ok := reg.ByID("hook")
	require.True(t, ok)
	assert.Equal(t, "POST", hook.HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, hook.HTTP.TimeoutSeconds)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, hook.HTTP.Headers)

	enabled := reg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "sqs-main", enabled[0].ID)
}

func TestLoadRegistry_JSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"console","type":"log"}]}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	cfg, ok := reg.ByID("console")
	require.True(t, ok)
	assert.Equal(t, TypeLog, cfg.Type)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty", "publishers: []\n", "no publishers"},
		{"missing id", "publishers:\n  - type: log\n", "id is required"},
		{"unknown type", "publishers:\n  - id: a\n    type: carrier-pigeon\n", "not supported"},
		{"duplicate", "publishers:\n  - id: a\n    type: log\n  - id: a\n    type: log\n", "duplicate"},
		{"http without url", "publishers:\n  - id: a\n    type: http\n    http: {}\n", "http.url"},
		{"sns missing fields", "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: aws-sns\n      sns:\n        region: x\n", "sns.access_key_id, sns.secret_access_key, sns.topic_arn"},
		{"gcp missing topic", "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: gcp\n      gcp:\n        project_id: p\n", "gcp.topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeFile(t, "p.yaml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadRegistry("  ")
	assert.Error(t, err)
}

func TestConfigRegistry_NilSafe(t *testing.T) {
	var reg *ConfigRegistry
	assert.Nil(t, reg.All())
	_, ok := reg.ByID("x")
	assert.False(t, ok)
}
