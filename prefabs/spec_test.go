package prefabs

import (
	"testing"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/gladerunner/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNavigationSpec(t *testing.T) {
	spec, err := LoadNavigationSpec()
	require.NoError(t, err)

	assert.Equal(t, "glade", spec.Level)
	assert.Equal(t, "chase.tengo", spec.Script)
	assert.Equal(t, time.Second/60, spec.TickDuration())
	assert.Equal(t, 2*time.Second, spec.Pool.RequestTimeout)

	pc := spec.ToPoolConfig(nil)
	assert.Equal(t, nav.SaturationQueue, pc.Saturation)
	assert.Equal(t, 16, pc.QueueSize)

	cc := spec.ToControllerConfig(nil)
	assert.Equal(t, 120.0, cc.Speed)
	assert.Equal(t, 4.0, cc.ArriveRadius)
}

func TestNavigationSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NavigationSpec)
	}{
		{"negative tick rate", func(s *NavigationSpec) { s.TickRate = -1 }},
		{"negative pool size", func(s *NavigationSpec) { s.Pool.Size = -2 }},
		{"negative timeout", func(s *NavigationSpec) { s.Pool.RequestTimeout = -time.Second }},
		{"unknown saturation", func(s *NavigationSpec) { s.Pool.Saturation = "drop" }},
		{"negative speed", func(s *NavigationSpec) { s.Agent.Speed = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spec NavigationSpec
			require.NoError(t, spec.Validate())
			tt.mutate(&spec)
			assert.Error(t, spec.Validate())
		})
	}

	spec := NavigationSpec{Pool: PoolSpec{Saturation: "reuse_slot"}}
	assert.Equal(t, nav.SaturationReuseSlot, spec.ToPoolConfig(nil).Saturation)
	assert.Equal(t, time.Second/60, spec.TickDuration())
}

func TestLoadSpecMissing(t *testing.T) {
	_, err := LoadSpec[NavigationSpec]("missing.yaml")
	assert.Error(t, err)
}

func TestLoadScripts(t *testing.T) {
	for _, name := range []string{"chase", "chase.tengo", "scripts/guard.tengo", "prefabs/scripts/guard.tengo"} {
		src, err := LoadScript(name)
		require.NoError(t, err, name)

		script := tengo.NewScript(src)
		_, err = script.Compile()
		assert.NoError(t, err, name)
	}

	_, err := LoadScript("missing")
	assert.Error(t, err)
}

func TestCleanPaths(t *testing.T) {
	tests := []struct {
		name, dir, ext, want string
	}{
		{"prefabs/scripts/chase.tengo", scriptDir, scriptExt, "scripts/chase.tengo"},
		{"scripts/chase", scriptDir, scriptExt, "scripts/chase.tengo"},
		{"chase", scriptDir, scriptExt, "scripts/chase.tengo"},
		{"", scriptDir, scriptExt, ""},
		{"prefabs/navigation.yaml", "", defaultExt, "navigation.yaml"},
		{"navigation", "", defaultExt, "navigation.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize(tt.name, tt.dir, tt.ext), tt.name)
	}
}
