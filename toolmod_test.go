package gomk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testToolMod struct {
	exists bool
	gens   int
}

func (m *testToolMod) Generate(env *Env) {
	m.gens++
	env.SetStepBuilder("Test", &Tool{Command: "TESTCOM"})
	env.SetTag("TESTCOM", "true")
}

func (m *testToolMod) Exists(*Env) bool { return m.exists }

type testConfMod struct{ testToolMod }

func (testConfMod) Configure(env *Env) {
	env.SetTag("TESTOPT", "-v "+env.TagOr("TESTLEVEL", "0"))
}

var testOkMod = &testToolMod{exists: true}

func init() {
	RegisterToolModule("test-ok", testOkMod)
	RegisterToolModule("test-missing", &testToolMod{})
	RegisterToolModule("test-conf", &testConfMod{testToolMod{exists: true}})
}

func TestLoadTools(t *testing.T) {
	ok := testOkMod
	ok.gens = 0
	assert.Panics(t, func() { RegisterToolModule("test-ok", ok) })
	assert.Subset(t, ToolModules(), []string{"test-ok", "test-missing"})

	env := new(Env)
	require.NoError(t, LoadTools(env, "test-ok"))
	assert.Equal(t, 1, ok.gens)
	_, found := env.StepBuilder("Test")
	assert.True(t, found)
	assert.Equal(t, "true", env.TagOr("TESTCOM", ""))

	assert.ErrorContains(t, LoadTools(env, "test-missing"), "not available")
	assert.ErrorContains(t, LoadTools(env, "no-such-tool"), "unknown tool")
}

func TestConfigureTools(t *testing.T) {
	env := new(Env)
	require.NoError(t, LoadTools(env, "test-ok", "test-conf"))
	sub := env.Sub()
	sub.SetTag("TESTLEVEL", "3")
	require.NoError(t, ConfigureTools(sub, "test-ok", "test-conf"))
	assert.Equal(t, "-v 3", sub.TagOr("TESTOPT", ""))
	_, ok := env.Tag("TESTOPT")
	assert.False(t, ok, "configured parent env")

	assert.ErrorContains(t, ConfigureTools(env, "no-such-tool"), "unknown tool")
}
