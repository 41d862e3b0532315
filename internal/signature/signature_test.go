package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Map<String, Object>", "Map"},
		{"java.util.Map<String, List<Integer>>", "java.util.Map"},
		{"ServiceReference<?>", "ServiceReference"},
		{"String ...", "String[]"},
		{"List<String>[]", "List[]"},
		{"int", "int"},
		{" Foo ", "Foo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Erase(tt.in))
		})
	}
}

func TestSplitArray(t *testing.T) {
	base, dims := SplitArray("java.lang.String[][]")
	assert.Equal(t, "java.lang.String", base)
	assert.Equal(t, 2, dims)
	assert.Equal(t, "java.lang.String[][]", WithDims(base, dims))
	assert.Equal(t, "int", WithDims("int", 0))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Foo", SimpleName("com.example.Foo"))
	assert.Equal(t, "Foo", SimpleName("Foo"))
	assert.Equal(t, "com.example", Qualifier("com.example.Foo"))
	assert.Equal(t, "", Qualifier("Foo"))
	assert.True(t, IsQualified("a.B"))
	assert.False(t, IsQualified("B"))
	assert.Equal(t, "a.Outer.Inner", SourceName("a.Outer$Inner"))
	assert.Equal(t, "A,B[]", Join([]string{"A", "B[]"}))
	assert.True(t, IsPrimitive("int"))
	assert.False(t, IsPrimitive("Integer"))
}
