package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinwang15/yawn/internal/cli"
)

const values = `# service settings
replicas: 1 # scaled by hand
image: nginx
ports:
  - 80
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)

	out, err := run(t, "get", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"replicas":1,"image":"nginx","ports":[80]}`, out)
	assert.Less(t, strings.Index(out, "replicas"), strings.Index(out, "image"), "key order kept")

	out, err = run(t, "get", "-o", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "image: nginx")

	_, err = run(t, "get", "-o", "toml", path)
	require.Error(t, err)
}

func TestSetPrintsDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)
	valuePath := writeFile(t, dir, "new.json", `{"replicas": 3, "image": "nginx", "ports": [80]}`)

	out, err := run(t, "set", path, valuePath)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(values, "replicas: 1", "replicas: 3", 1), out)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, values, string(got), "file is untouched without -i")
}

func TestSetInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)
	valuePath := writeFile(t, dir, "new.yaml", "replicas: 1\nimage: nginx\nports: [80]\ndebug: true\n")

	out, err := run(t, "set", "-i", path, valuePath)
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, values+"debug: true\n", string(got))
}

func TestPatchDiff(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)
	patchPath := writeFile(t, dir, "patch.json", `[{"op":"replace","path":"/image","value":"caddy"}]`)

	out, err := run(t, "patch", "--diff", path, patchPath)
	require.NoError(t, err)
	assert.Contains(t, out, "-image: nginx")
	assert.Contains(t, out, "+image: caddy")
	assert.NotContains(t, out, "-replicas")
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)
	patchPath := writeFile(t, dir, "merge.json", `{"image": null}`)

	out, err := run(t, "merge", path, patchPath)
	require.NoError(t, err)
	assert.Equal(t, "# service settings\nreplicas: 1 # scaled by hand\nports:\n  - 80\n", out)
}

func TestEditErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", values)
	bad := writeFile(t, dir, "bad.json", `{"op":`)

	_, err := run(t, "patch", path, bad)
	require.Error(t, err)

	_, err = run(t, "set", filepath.Join(dir, "missing.yaml"), bad)
	require.Error(t, err)

	_, err = run(t, "set", path)
	require.Error(t, err)
}

func TestBindEnvVars(t *testing.T) {
	tcs := map[string]struct {
		envVars       map[string]string
		wantLogLevel  string
		wantLogFormat string
		args          []string
	}{
		"environment variables are bound when no args provided": {
			envVars: map[string]string{
				"YAWN_LOG_LEVEL":  "debug",
				"YAWN_LOG_FORMAT": "json",
			},
			args:          []string{},
			wantLogLevel:  "debug",
			wantLogFormat: "json",
		},
		"command line args take precedence over environment variables": {
			envVars: map[string]string{
				"YAWN_LOG_LEVEL":  "debug",
				"YAWN_LOG_FORMAT": "json",
			},
			args:          []string{"--log-level", "error", "--log-format", "text"},
			wantLogLevel:  "error",
			wantLogFormat: "text",
		},
		"no environment variables uses defaults": {
			envVars:       map[string]string{},
			args:          []string{},
			wantLogLevel:  "info",
			wantLogFormat: "text",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for key, val := range tc.envVars {
				t.Setenv(key, val)
			}

			cmd := cli.NewRootCmd()
			require.NoError(t, cmd.ParseFlags(tc.args))

			logLevel, err := cmd.PersistentFlags().GetString("log-level")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogLevel, logLevel)

			logFormat, err := cmd.PersistentFlags().GetString("log-format")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogFormat, logFormat)

			usage := cmd.PersistentFlags().Lookup("log-level").Usage
			assert.Contains(t, usage, "$YAWN_LOG_LEVEL")
		})
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  error
		hint bool
	}{
		"usage error": {err: errors.New("unknown flag: --nope"), hint: true},
		"edit error":  {err: errors.New("edit values.yaml: yawn: overlapping edits"), hint: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			cli.ErrorHandler(&buf, fang.Styles{}, tc.err)
			assert.Contains(t, buf.String(), tc.err.Error())
			assert.Equal(t, tc.hint, strings.Contains(buf.String(), "--help"))
		})
	}
}
