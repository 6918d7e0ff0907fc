package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subOptions struct {
	Port  int      `mapstructure:"port"`
	Hosts []string `mapstructure:"hosts"`
}

type testOptions struct {
	Name string      `mapstructure:"name"`
	Sub  *subOptions `mapstructure:"sub"`

	completed bool
	invalid   bool
}

func newTestOptions() *testOptions {
	return &testOptions{Name: "default", Sub: &subOptions{Port: 1, Hosts: []string{"a"}}}
}

func (o *testOptions) Flags() (fss NamedFlagSets) {
	fss.FlagSet("misc").StringVar(&o.Name, "name", o.Name, "name")
	fs := fss.FlagSet("sub")
	fs.IntVar(&o.Sub.Port, "sub.port", o.Sub.Port, "port")
	fs.StringSliceVar(&o.Sub.Hosts, "sub.hosts", o.Sub.Hosts, "hosts")
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	if o.invalid {
		return errors.New("invalid")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, opts *testOptions, args ...string) ([]string, error) {
	t.Helper()
	var got []string
	a := NewApp(
		WithName("test-app"),
		WithNoVersion(),
		WithOptions(opts),
		WithArgs(cobra.ExactArgs(2)),
		WithRunFunc(func(_ *cobra.Command, args []string) error {
			got = args
			return nil
		}),
	)
	a.Command().SetArgs(args)
	return got, a.Command().Execute()
}

func TestPositionalArgsReachRunFunc(t *testing.T) {
	opts := newTestOptions()
	got, err := execute(t, opts, "question", "C123")
	require.NoError(t, err)
	assert.Equal(t, []string{"question", "C123"}, got)
	assert.True(t, opts.completed)
	assert.Equal(t, "default", opts.Name)
}

func TestExactArgsRejectsMissingArgument(t *testing.T) {
	_, err := execute(t, newTestOptions(), "question")
	require.Error(t, err)
}

func TestPrecedenceFlagOverEnvOverConfig(t *testing.T) {
	cfg := writeConfig(t, "name: from-config\nsub:\n  port: 10\n  hosts: [x, y]\n")
	t.Setenv("TEST_APP_SUB_PORT", "20")

	opts := newTestOptions()
	_, err := execute(t, opts, "--config", cfg, "--name=from-flag", "q", "id")
	require.NoError(t, err)

	assert.Equal(t, "from-flag", opts.Name)
	assert.Equal(t, 20, opts.Sub.Port)
	assert.Equal(t, []string{"x", "y"}, opts.Sub.Hosts)
}

func TestChangedSliceFlagSurvivesConfig(t *testing.T) {
	cfg := writeConfig(t, "sub:\n  hosts: [x]\n")

	opts := newTestOptions()
	_, err := execute(t, opts, "--config", cfg, "--sub.hosts=p,q", "q", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, opts.Sub.Hosts)
}

func TestConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("APP_TEST_NAME", "expanded")
	cfg := writeConfig(t, "name: ${APP_TEST_NAME}\n")

	opts := newTestOptions()
	_, err := execute(t, opts, "--config", cfg, "q", "id")
	require.NoError(t, err)
	assert.Equal(t, "expanded", opts.Name)
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("TEST_APP_SUB_PORT", "abc")
	_, err := execute(t, newTestOptions(), "q", "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_APP_SUB_PORT")
}

func TestValidateErrorStopsRun(t *testing.T) {
	opts := newTestOptions()
	opts.invalid = true
	got, err := execute(t, opts, "q", "id")
	require.EqualError(t, err, "invalid")
	assert.Nil(t, got)
}
