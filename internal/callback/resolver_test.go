package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dsrefs/internal/javaindex"
	"github.com/standardbeagle/dsrefs/internal/types"
)

var osgiImports = []types.Import{
	{Path: "java.util.Map"},
	{Path: "org.osgi.service.component.ComponentContext"},
	{Path: "org.osgi.framework", OnDemand: true},
}

func class(pkg, name, super string, methods ...*types.MethodSymbol) *types.TypeSymbol {
	t := &types.TypeSymbol{SimpleName: name, Package: pkg, Superclass: super, Imports: osgiImports}
	for _, m := range methods {
		t.AddMethod(m)
	}
	return t
}

func method(name string, flags types.Flags, params ...string) *types.MethodSymbol {
	return &types.MethodSymbol{MethodName: name, ReturnType: "void", Flags: flags, ParameterTypes: params}
}

func newIndex(ts ...*types.TypeSymbol) *javaindex.Index {
	idx := javaindex.New()
	idx.AddPlatformTypes()
	idx.Add(ts...)
	return idx
}

// countingIndex records type lookups by name
type countingIndex struct {
	*javaindex.Index
	lookups map[string]int
}

func (c *countingIndex) LookupType(name string) []*types.TypeSymbol {
	c.lookups[name]++
	return c.Index.LookupType(name)
}

func TestVisible(t *testing.T) {
	derived := &types.TypeSymbol{SimpleName: "Derived", Package: "a"}
	samePkg := &types.TypeSymbol{SimpleName: "Base", Package: "a"}
	otherPkg := &types.TypeSymbol{SimpleName: "Base", Package: "b"}

	tests := []struct {
		name      string
		declaring *types.TypeSymbol
		flags     types.Flags
		want      bool
	}{
		{"private on most derived", derived, types.FlagPrivate, true},
		{"package private on most derived", derived, 0, true},
		{"inherited private", samePkg, types.FlagPrivate, false},
		{"inherited package private same package", samePkg, 0, true},
		{"inherited package private other package", otherPkg, 0, false},
		{"inherited protected other package", otherPkg, types.FlagProtected, true},
		{"inherited public other package", otherPkg, types.FlagPublic, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.declaring, derived, tt.flags))
		})
	}
}

func TestResolve_ComponentContextShortCircuits(t *testing.T) {
	base := class("p", "Base", "", method("activate", types.FlagProtected, "ComponentContext"))
	impl := class("p", "Impl", "Base",
		method("activate", 0),
		method("activate", types.FlagPrivate, "ComponentContext"),
	)
	idx := &countingIndex{Index: newIndex(base, impl), lookups: make(map[string]int)}

	c, ok := NewResolver(idx).ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 0, c.Rank)
	assert.Same(t, impl, c.Method.Declaring)
	assert.Equal(t, []string{"ComponentContext"}, c.Method.ParameterTypes)
	assert.Zero(t, idx.lookups["p.Base"], "superclass must not be inspected")
}

func TestResolve_LowestRankWinsOverDiscoveryOrder(t *testing.T) {
	base := class("p", "Base", "", method("activate", types.FlagProtected, "Map<String, Object>"))
	impl := class("p", "Impl", "Base", method("activate", types.FlagPublic))
	r := NewResolver(newIndex(base, impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 2, c.Rank)
	assert.Same(t, base, c.Method.Declaring)
	assert.Equal(t, "single Map", c.Rule)
}

func TestResolve_TiesGoToMostDerived(t *testing.T) {
	base := class("p", "Base", "", method("activate", types.FlagPublic))
	impl := class("p", "Impl", "Base", method("activate", types.FlagPublic))
	r := NewResolver(newIndex(base, impl))

	m := r.Resolve(impl, Spec{Kind: Activate})
	require.NotNil(t, m)
	assert.Same(t, impl, m.Declaring)
}

func TestResolve_InheritedVisibility(t *testing.T) {
	root := class("other", "Root", "", method("activate", types.FlagPublic))
	base := class("other", "Base", "other.Root",
		method("activate", types.FlagPrivate, "ComponentContext"),
		method("activate", 0, "java.util.Map"),
	)
	impl := class("p", "Impl", "other.Base")
	r := NewResolver(newIndex(root, base, impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 4, c.Rank)
	assert.Same(t, root, c.Method.Declaring)
}

func TestResolve_SamePackageInheritance(t *testing.T) {
	base := class("p", "Base", "", method("activate", 0, "Map"))
	impl := class("p", "Impl", "Base")
	r := NewResolver(newIndex(base, impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 2, c.Rank)
}

func TestResolve_Filters(t *testing.T) {
	nonVoid := method("activate", types.FlagPublic)
	nonVoid.ReturnType = "boolean"
	impl := class("p", "Impl", "",
		nonVoid,
		method("start", types.FlagPublic),
		method("activate", types.FlagPublic, "Unknown"),
	)
	r := NewResolver(newIndex(impl))

	assert.Nil(t, r.Resolve(impl, Spec{Kind: Activate}))
	assert.NotNil(t, r.Resolve(impl, Spec{Kind: Activate, Method: "start"}))
	assert.Nil(t, r.Resolve(impl, Spec{Kind: Modified}), "modified has no default name")
	assert.Nil(t, r.Resolve(nil, Spec{Kind: Activate}))
}

func TestResolve_ActivateMultipleParameters(t *testing.T) {
	impl := class("p", "Impl", "",
		method("activate", 0, "BundleContext", "Map", "ComponentContext"),
		method("activate", 0, "BundleContext", "String"),
	)
	r := NewResolver(newIndex(impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 3, c.Rank)
	assert.Len(t, c.Method.ParameterTypes, 3)
}

func TestResolve_Deactivate(t *testing.T) {
	tests := []struct {
		name   string
		params [][]string
		want   int
	}{
		{"context", [][]string{{}, {"ComponentContext"}}, 0},
		{"map before int", [][]string{{"int"}, {"Map"}}, 2},
		{"int before Integer", [][]string{{"Integer"}, {"int"}}, 3},
		{"Integer before multi", [][]string{{"BundleContext", "int"}, {"java.lang.Integer"}}, 4},
		{"multi with int", [][]string{{}, {"BundleContext", "Integer"}}, 5},
		{"no parameters", [][]string{{}}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := class("p", "Impl", "")
			for _, params := range tt.params {
				impl.AddMethod(method("deactivate", 0, params...))
			}
			c, ok := NewResolver(newIndex(impl)).ResolveCandidate(impl, Spec{Kind: Deactivate})
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Rank)
		})
	}
}

func TestResolve_Bind(t *testing.T) {
	service := &types.TypeSymbol{SimpleName: "Service", Package: "api", Kind: types.KindInterface}
	logService := &types.TypeSymbol{SimpleName: "LogService", Package: "api", Kind: types.KindInterface, Interfaces: []string{"Service"}}
	unrelated := &types.TypeSymbol{SimpleName: "Unrelated", Package: "api", Kind: types.KindInterface}
	imports := append([]types.Import{{Path: "api", OnDemand: true}}, osgiImports...)

	tests := []struct {
		name   string
		params [][]string
		want   int
		found  bool
	}{
		{"service reference", [][]string{{"LogService"}, {"ServiceReference<LogService>"}}, 0, true},
		{"exact", [][]string{{"Service"}, {"LogService"}}, 1, true},
		{"supertype", [][]string{{"LogService", "Map"}, {"Service"}}, 2, true},
		{"object is a supertype", [][]string{{"Object"}}, 2, true},
		{"exact with map", [][]string{{"Service", "Map"}, {"LogService", "Map"}}, 3, true},
		{"supertype with map", [][]string{{"Unrelated"}, {"Service", "Map"}}, 4, true},
		{"unrelated", [][]string{{"Unrelated"}, {"Unrelated", "Map"}, {"LogService", "String"}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := class("p", "Impl", "")
			impl.Imports = imports
			for _, params := range tt.params {
				impl.AddMethod(method("setLog", 0, params...))
			}
			r := NewResolver(newIndex(service, logService, unrelated, impl))

			c, ok := r.ResolveCandidate(impl, Spec{Kind: Bind, Method: "setLog", ReferenceInterface: "api.LogService"})
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, c.Rank)
			}
		})
	}
}

func TestResolve_BindUnknownReferenceType(t *testing.T) {
	impl := class("p", "Impl", "", method("setLog", 0, "Object"))
	r := NewResolver(newIndex(impl))

	assert.Nil(t, r.Resolve(impl, Spec{Kind: Bind, Method: "setLog", ReferenceInterface: "api.Missing"}))
}

func TestResolve_Updated(t *testing.T) {
	impl := class("p", "Impl", "", method("updatedLog", 0, "Map"))
	r := NewResolver(newIndex(impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Updated, Method: "updatedLog", ReferenceInterface: "api.LogService"})
	require.True(t, ok)
	assert.Equal(t, 5, c.Rank)

	impl.AddMethod(method("updatedLog", 0, "ServiceReference"))
	c, ok = r.ResolveCandidate(impl, Spec{Kind: Updated, Method: "updatedLog", ReferenceInterface: "api.LogService"})
	require.True(t, ok)
	assert.Equal(t, 0, c.Rank)

	_, ok = r.ResolveCandidate(impl, Spec{Kind: Bind, Method: "updatedLog", ReferenceInterface: "api.LogService"})
	assert.True(t, ok)
}

func TestResolve_ResolvedTypesUseErasedNames(t *testing.T) {
	impl := &types.TypeSymbol{SimpleName: "Impl", Package: "p", Resolved: true}
	impl.AddMethod(method("activate", types.FlagPublic, "java.util.Map<java.lang.String,?>"))
	r := NewResolver(newIndex(impl))

	c, ok := r.ResolveCandidate(impl, Spec{Kind: Activate})
	require.True(t, ok)
	assert.Equal(t, 2, c.Rank)
}
