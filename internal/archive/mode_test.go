package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"always", ModeAlways},
		{"never", ModeNever},
		{"asNecessary", ModeAsNecessary},
		{"as-necessary", ModeAsNecessary},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMode_Unknown(t *testing.T) {
	_, err := ParseMode("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sometimes")
}

func TestMode_String_RoundTrips(t *testing.T) {
	for _, m := range []Mode{ModeAsNecessary, ModeAlways, ModeNever} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestMode_YAML(t *testing.T) {
	var doc struct {
		Modes []Mode `yaml:"modes"`
	}
	err := yaml.Unmarshal([]byte("modes: [always, never, asNecessary]"), &doc)
	require.NoError(t, err)
	assert.Equal(t, []Mode{ModeAlways, ModeNever, ModeAsNecessary}, doc.Modes)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "always")
	assert.Contains(t, string(out), "asNecessary")
}

func TestMode_YAML_Invalid(t *testing.T) {
	var m Mode
	err := yaml.Unmarshal([]byte(`"maybe"`), &m)
	require.Error(t, err)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "SaveStarted", SaveStarted.String())
	assert.Equal(t, "ExtractCompleted", ExtractCompleted.String())
}
