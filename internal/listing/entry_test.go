package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for Entry File Resolution:
// - Annotated entry function resolves to its file
// - Name match is case-insensitive
// - Unannotated entry function resolves to the default file
// - No matching function resolves to the default file
// - The first namesake wins even when a later one is annotated

func TestResolveEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		chunks     []*Chunk
		entryPoint string
		want       string
	}{
		{
			name: "annotated entry",
			chunks: []*Chunk{
				{Name: "InitGame", File: "GAME.C"},
				{Name: "main", File: `C:\SRC\BOOT.C`},
			},
			entryPoint: "main",
			want:       `C:\SRC\BOOT.C`,
		},
		{
			name:       "case-insensitive",
			chunks:     []*Chunk{{Name: "Main", File: "BOOT.C"}},
			entryPoint: "MAIN",
			want:       "BOOT.C",
		},
		{
			name: "unannotated entry",
			chunks: []*Chunk{
				{Name: "Foo", File: "FOO.C"},
				{Name: "MAIN"},
			},
			entryPoint: "MAIN",
			want:       DefaultEntryFile,
		},
		{
			name:       "no match",
			chunks:     []*Chunk{{Name: "Foo", File: "FOO.C"}},
			entryPoint: "main",
			want:       DefaultEntryFile,
		},
		{
			name:       "no chunks",
			entryPoint: "main",
			want:       DefaultEntryFile,
		},
		{
			name: "first namesake wins",
			chunks: []*Chunk{
				{Name: "main"},
				{Name: "main", File: "LATE.C"},
			},
			entryPoint: "main",
			want:       DefaultEntryFile,
		},
		{
			name: "first annotated namesake wins",
			chunks: []*Chunk{
				{Name: "main", File: "EARLY.C"},
				{Name: "main", File: "LATE.C"},
			},
			entryPoint: "main",
			want:       "EARLY.C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveEntry(tt.chunks, tt.entryPoint, DefaultEntryFile))
		})
	}
}

func TestResolveEntry_CustomDefault(t *testing.T) {
	t.Parallel()

	got := ResolveEntry([]*Chunk{{Name: "main"}}, "main", "BOOT.C")
	assert.Equal(t, "BOOT.C", got)
}
