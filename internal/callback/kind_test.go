package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/dsrefs/internal/signature"
)

func TestKind(t *testing.T) {
	k, ok := ParseKind("updated")
	assert.True(t, ok)
	assert.Equal(t, Updated, k)
	_, ok = ParseKind("start")
	assert.False(t, ok)

	assert.Equal(t, "activate", Activate.DefaultMethod())
	assert.Equal(t, "deactivate", Deactivate.DefaultMethod())
	assert.Empty(t, Modified.DefaultMethod())
	assert.True(t, Unbind.IsReference())
	assert.False(t, Modified.IsReference())
}

func TestSpec(t *testing.T) {
	assert.Equal(t, "activate", Spec{Kind: Activate}.MethodName())
	assert.Equal(t, "start", Spec{Kind: Activate, Method: "start"}.MethodName())
	assert.Equal(t, "bind setLog(api.Log)", Spec{Kind: Bind, Method: "setLog", ReferenceInterface: "api.Log"}.String())
}

func TestLadderRanks(t *testing.T) {
	never := func(string) bool { return false }
	always := func(string) bool { return true }

	tests := []struct {
		name       string
		kind       Kind
		params     []string
		assignable func(string) bool
		want       int
		ok         bool
	}{
		{"activate context", Activate, []string{signature.ComponentContext}, never, 0, true},
		{"modified map", Modified, []string{signature.Map}, never, 2, true},
		{"activate single bundle context", Activate, []string{signature.BundleContext}, never, 0, false},
		{"activate int is not valid", Activate, []string{signature.Int}, never, 0, false},
		{"deactivate multi", Deactivate, []string{signature.Int, signature.Map}, never, 5, true},
		{"bind exact", Bind, []string{"api.Log"}, always, 1, true},
		{"bind assignable", Unbind, []string{"api.Base"}, always, 2, true},
		{"bind not assignable", Bind, []string{"api.Other"}, never, 0, false},
		{"bind map first is invalid", Bind, []string{signature.Map, "api.Log"}, never, 0, false},
		{"updated map", Updated, []string{signature.Map}, never, 5, true},
		{"bind map alone", Bind, []string{signature.Map}, never, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &call{params: tt.params, reference: "api.Log", assignable: tt.assignable}
			r, ok := rank(Ladder(tt.kind), c)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, r.Rank)
			}
		})
	}
}

func TestLadderOrder(t *testing.T) {
	for _, kind := range []Kind{Activate, Deactivate, Modified, Bind, Unbind, Updated} {
		ladder := Ladder(kind)
		for i := 1; i < len(ladder); i++ {
			assert.Less(t, ladder[i-1].Rank, ladder[i].Rank, "%s ladder must be ordered", kind)
		}
	}
	assert.Nil(t, Ladder(Kind(42)))
	assert.Len(t, Ladder(Updated), len(Ladder(Bind))+1)
}
