package yawn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReplacingScalarWithMapKeepsFollowingList(t *testing.T) {
	input := `envs: none
externalSecretEnvs:
  - name: SECRET_1
    path: secret/path/1
  - name: SECRET_2
    path: secret/path/2
`
	newEnvs := map[string]string{
		"NEW_KEY_1": "val1",
		"NEW_KEY_2": "val2",
		"NEW_KEY_3": "val3",
	}
	mapJSON, err := json.Marshal(newEnvs)
	require.NoError(t, err)

	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	type patchOp struct {
		Op    string          `json:"op"`
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value,omitempty"`
	}
	payload, err := json.Marshal([]patchOp{{Op: "replace", Path: "/envs", Value: mapJSON}})
	require.NoError(t, err)
	require.NoError(t, doc.ApplyJSONPatchBytes(payload))

	out := doc.Text()
	t.Logf("Output YAML:\n%s", out)

	var data map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &data), "resulting YAML should be valid")

	envs, ok := data["envs"].(map[string]any)
	require.True(t, ok, "envs should be a mapping, got %T", data["envs"])
	assert.Len(t, envs, 3)

	secrets, isList := data["externalSecretEnvs"].([]any)
	require.True(t, isList, "externalSecretEnvs should be a list")
	assert.Len(t, secrets, 2)
}

func TestReplacingNestedMapIsLeftAsIs(t *testing.T) {
	input := `envs:
  OLD_KEY: old_val
externalSecretEnvs:
  - name: SECRET_1
`
	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	patch := []byte(`[{"op":"replace","path":"/envs","value":{"NEW_KEY":"v"}}]`)
	require.NoError(t, doc.ApplyJSONPatchBytes(patch))
	assert.Equal(t, input, doc.Text())
}

func TestFoldedScalarPreservedWhenAddingSiblingSequence(t *testing.T) {
	input := `envs:
  FOO: x
note: >
    line1
    line2
`
	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	patch := []byte(`[
		{"op":"add","path":"/externalSecretEnvs","value":[{"name":"S","path":"S"}]}
	]`)
	require.NoError(t, doc.ApplyJSONPatchBytes(patch))

	expected := input + `externalSecretEnvs:
  - name: S
    path: S
`
	assert.Equal(t, expected, doc.Text(), "folded scalar should keep its line breaks when adding a sibling array")

	var round map[string]any
	require.NoError(t, yaml.Unmarshal(doc.Bytes(), &round), "output should remain valid YAML")
}

func TestDeletingAllKeysKeepsComments(t *testing.T) {
	input := `# app chart values
cpu: 100
envs:
  REGION: HK
`
	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	require.NoError(t, doc.DeleteKey("cpu"))
	require.NoError(t, doc.DeleteKey("envs"))
	assert.Equal(t, "# app chart values\n", doc.Text())

	v, err := doc.Value()
	require.NoError(t, err)
	assert.True(t, v.IsNull(), "a document with only comments is null")

	require.NoError(t, doc.SetKey("cpu", 200))
	assert.Equal(t, "# app chart values\ncpu: 200\n", doc.Text())
}
