package format_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	got, err := format.JSON([]byte(`{
		"redis": {"host": "localhost", "port": 6379, "password": "${REDIS_PASSWORD}"},
		"debug": true,
		"tags": ["a", null]
	}`)).Decode()
	require.NoError(t, err)

	want := map[string]any{
		"redis": map[string]any{
			"host":     "localhost",
			"port":     json.Number("6379"),
			"password": "${REDIS_PASSWORD}",
		},
		"debug": true,
		"tags":  []any{"a", nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "syntax", data: `{"a": }`, wantErr: "decode json"},
		{name: "trailing data", data: `{"a": 1} {"b": 2}`, wantErr: "unexpected data after top-level value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := format.JSON([]byte(tt.data)).Decode()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	doc, err := format.JSON([]byte("  \n")).Decode()
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestYAML(t *testing.T) {
	got, err := format.YAML([]byte(`
redis:
  host: localhost
  port: ${REDIS_PORT}
  password: "${REDIS_PASSWORD}"
1: numeric key
list:
  - 1
  - "2"
`)).Decode()
	require.NoError(t, err)

	want := map[string]any{
		"redis": map[string]any{
			"host":     "localhost",
			"port":     "${REDIS_PORT}",
			"password": "${REDIS_PASSWORD}",
		},
		"1":    "numeric key",
		"list": []any{1, "2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("YAML() mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML_Error(t *testing.T) {
	_, err := format.YAML([]byte("a: [1, 2")).Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml")
}

func TestHCL(t *testing.T) {
	src := `
name    = "api"
debug   = false
workers = 4

redis {
  host     = "localhost"
  port     = "${REDIS_PORT}"
  password = env.REDIS_PASSWORD
  url      = "redis://${REDIS_HOST}:6379"
  escaped  = "$${LITERAL}"
}

server "public" {
  port = 8080
}

rule {
  allow = ["a", "b"]
}

rule {
  allow = []
}
`
	got, err := format.HCL([]byte(src), "config.hcl", cfgvars.DefaultRecognizer).Decode()
	require.NoError(t, err)

	want := map[string]any{
		"name":    "api",
		"debug":   false,
		"workers": json.Number("4"),
		"redis": map[string]any{
			"host":     "localhost",
			"port":     "${REDIS_PORT}",
			"password": "${REDIS_PASSWORD}",
			"url":      "redis://${REDIS_HOST}:6379",
			"escaped":  "${LITERAL}",
		},
		"server": map[string]any{
			"public": map[string]any{"port": json.Number("8080")},
		},
		"rule": []any{
			map[string]any{"allow": []any{"a", "b"}},
			map[string]any{"allow": []any{}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HCL() mismatch (-want +got):\n%s", diff)
	}
}

func TestHCL_Error(t *testing.T) {
	_, err := format.HCL([]byte(`name = `), "broken.hcl", cfgvars.Recognizer{}).Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode hcl")
	assert.Contains(t, err.Error(), "broken.hcl")
}

func TestHCL_BlockShapeConflict(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "labeled after repeated",
			src:  "server {\n  a = 1\n}\nserver {\n  a = 2\n}\nserver \"api\" {\n  a = 3\n}\n",
			want: `block "server" conflicts with block at "server"`,
		},
		{
			name: "unlabeled after labeled",
			src:  "server \"api\" {\n  a = 1\n}\nserver {\n  a = 2\n}\n",
			want: `block "server" conflicts with labeled block at "server"`,
		},
		{
			name: "block over attribute",
			src:  "server = \"x\"\nserver {\n  a = 1\n}\n",
			want: `block "server" conflicts with attribute at "server"`,
		},
		{
			name: "nested labels",
			src:  "server \"api\" {\n  a = 1\n}\nserver \"api\" \"v1\" {\n  a = 2\n}\n",
			want: `conflicts with block at "server.api"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := format.HCL([]byte(tt.src), "shape.hcl", cfgvars.DefaultRecognizer).Decode()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "shape.hcl")
		})
	}
}

func TestHCL_RepeatedLabeledBlocks(t *testing.T) {
	got, err := format.HCL([]byte(`
server "api" {
  a = 1
}
server "api" {
  a = 2
}
server "web" {
  a = 3
}
`), "labels.hcl", cfgvars.DefaultRecognizer).Decode()
	require.NoError(t, err)

	want := map[string]any{
		"server": map[string]any{
			"api": []any{
				map[string]any{"a": json.Number("1")},
				map[string]any{"a": json.Number("2")},
			},
			"web": map[string]any{"a": json.Number("3")},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HCL() mismatch (-want +got):\n%s", diff)
	}
}

func TestHCL_CustomDelimiters(t *testing.T) {
	r := cfgvars.Recognizer{Prefix: "%{", Suffix: "}"}
	doc, err := format.HCL([]byte(`
password = env.PW
user     = USER
`), "custom.hcl", r).Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"password": "%{PW}", "user": "%{USER}"}, doc)

	got, err := cfgvars.Resolve(doc, cfgvars.MapSource{"PW": "s", "USER": "admin"}, cfgvars.WithDelimiters("%{", "}"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"password": "s", "user": "admin"}, got)
}

func TestHCL_DecodeWithSubstitution(t *testing.T) {
	type Config struct {
		Redis struct {
			Port     uint16 `json:"port"`
			Password string `json:"password"`
		} `json:"redis"`
	}

	src := cfgvars.MapSource{"REDIS_PORT": "6379", "REDIS_PASSWORD": "secret"}
	cfg, err := cfgvars.Decode[Config](format.HCL([]byte(`
redis {
  port     = "${REDIS_PORT}"
  password = env.REDIS_PASSWORD
}
`), "app.hcl", cfgvars.DefaultRecognizer), src)
	require.NoError(t, err)
	assert.Equal(t, uint16(6379), cfg.Redis.Port)
	assert.Equal(t, "secret", cfg.Redis.Password)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		data string
	}{
		{path: "config.json", data: `{"port": "${PORT}"}`},
		{path: "CONFIG.JSON", data: `{"port": "${PORT}"}`},
		{path: "config.yaml", data: `port: "${PORT}"`},
		{path: "config.yml", data: `port: "${PORT}"`},
		{path: "config", data: `port: "${PORT}"`},
		{path: "config.hcl", data: `port = "${PORT}"`},
		{path: "main.tf", data: `port = PORT`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc, err := format.Object(format.ForPath(tt.path, []byte(tt.data), cfgvars.DefaultRecognizer))
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"port": "${PORT}"}, doc)
		})
	}
}

func TestForPath_HCLDelimiters(t *testing.T) {
	r := cfgvars.Recognizer{Prefix: "$", Suffix: ""}
	doc, err := format.Object(format.ForPath("app.hcl", []byte(`port = env.PORT`), r))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": "$PORT"}, doc)
}

func TestObject(t *testing.T) {
	doc, err := format.Object(format.YAML(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc)

	_, err = format.Object(format.YAML([]byte("- a\n- b\n")))
	require.ErrorIs(t, err, format.ErrNotObject)
}
