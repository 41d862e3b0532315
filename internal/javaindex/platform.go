package javaindex

import (
	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

const platformPath = "<platform>"

// PlatformTypes returns resolved stand-ins for the JDK and OSGi types that
// component callbacks are declared against. Workspaces rarely carry their
// sources, and assignability checks need them to end the walk.
func PlatformTypes() []*types.TypeSymbol {
	stub := func(qualified string, kind types.TypeKind, super string, ifaces ...string) *types.TypeSymbol {
		return &types.TypeSymbol{
			SimpleName: signature.SimpleName(qualified),
			Package:    signature.Qualifier(qualified),
			Kind:       kind,
			Flags:      types.FlagPublic,
			Superclass: super,
			Interfaces: ifaces,
			Resolved:   true,
			Location:   types.SourceLocation{Path: platformPath},
		}
	}

	return []*types.TypeSymbol{
		stub(signature.Object, types.KindClass, ""),
		stub("java.lang.String", types.KindClass, signature.Object, "java.lang.CharSequence", "java.lang.Comparable"),
		stub("java.lang.CharSequence", types.KindInterface, ""),
		stub("java.lang.Comparable", types.KindInterface, ""),
		stub("java.lang.Number", types.KindClass, signature.Object),
		stub(signature.Integer, types.KindClass, "java.lang.Number", "java.lang.Comparable"),
		stub(signature.Map, types.KindInterface, ""),
		stub("java.util.Dictionary", types.KindClass, signature.Object),
		stub(signature.BundleContext, types.KindInterface, ""),
		stub(signature.ServiceReference, types.KindInterface, "", "java.lang.Comparable"),
		stub(signature.ComponentContext, types.KindInterface, ""),
	}
}

// AddPlatformTypes seeds the index with PlatformTypes, skipping names that
// are already indexed from source.
func (i *Index) AddPlatformTypes() {
	for _, t := range PlatformTypes() {
		if !i.has(t.QualifiedName()) {
			i.Add(t)
		}
	}
}
