package attrrules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `
internal_hosts:
  - example.com
rules:
  - type: a
    attrs:
      rel: nofollow noopener
      target: _blank
    external: true
  - type: a
    attrs:
      class: link
  - type: code
    attrs:
      translate: "no"
`

func TestParse(t *testing.T) {
	rules, err := Parse(strings.NewReader(rulesYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, rules.InternalHosts)
	require.Len(t, rules.Rules, 3)
	assert.True(t, rules.Rules[0].External)
	assert.Equal(t, "no", rules.Rules[2].Attrs["translate"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing type", yaml: "rules:\n  - attrs:\n      rel: x\n"},
		{name: "unknown field", yaml: "rulez: []\n"},
		{name: "bad yaml", yaml: "rules: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	rules, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules.Generators())
}

func TestGenerators(t *testing.T) {
	rules, err := Parse(strings.NewReader(rulesYAML))
	require.NoError(t, err)
	gens := rules.Generators()
	require.Len(t, gens, 2)

	tests := []struct {
		name string
		href string
		want map[string]string
	}{
		{
			name: "external link",
			href: "https://other.org/page",
			want: map[string]string{"rel": "nofollow noopener", "target": "_blank", "class": "link"},
		},
		{
			name: "internal link",
			href: "https://example.com/about",
			want: map[string]string{"class": "link"},
		},
		{
			name: "internal subdomain",
			href: "https://blog.Example.com/post",
			want: map[string]string{"class": "link"},
		},
		{
			name: "relative link",
			href: "/about",
			want: map[string]string{"class": "link"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gens["a"](map[string]string{"href": tt.href}, ""))
		})
	}

	assert.Equal(t, map[string]string{"translate": "no"}, gens["code"](nil, ""))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0o644))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rules.Rules, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
