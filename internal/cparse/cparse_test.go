package cparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for C extraction:
// - Function definitions are extracted with name, signature and line range
// - Pointer-returning functions resolve to their identifier
// - Calls are collected once each, in first-seen order
// - Comments and decompiler annotations do not disturb extraction
// - A cancelled context aborts before parsing
// - CachedParser serves unchanged text from the cache and reparses changed text

const decompiled = `//----- (80010000) --------------------------------------------------------
// [PSX-MND-SYM] Function file = C:\PSX\SRC\GAME.C
// [PSX-MND-SYM] Function name = InitGame
void InitGame(int mode)
{
  gGameMode = mode;
  DrawSprite(0, 0);
  DrawSprite(1, 1);
}

//----- (80010100) --------------------------------------------------------
char *GetName(int id)
{
  return Lookup(id);
}
`

func TestParse_Functions(t *testing.T) {
	t.Parallel()

	ex, err := NewParser().Parse(context.Background(), []byte(decompiled))
	require.NoError(t, err)
	require.Len(t, ex.Functions, 2)

	initGame, ok := ex.Function("InitGame")
	require.True(t, ok)
	assert.Equal(t, "void InitGame(int mode)", initGame.Signature)
	assert.Equal(t, 4, initGame.StartLine)
	assert.Equal(t, 9, initGame.EndLine)

	getName, ok := ex.Function("GetName")
	require.True(t, ok)
	assert.Equal(t, "char *GetName(int id)", getName.Signature)

	_, ok = ex.Function("Missing")
	assert.False(t, ok)
}

func TestParse_Calls(t *testing.T) {
	t.Parallel()

	ex, err := NewParser().Parse(context.Background(), []byte(decompiled))
	require.NoError(t, err)

	assert.Equal(t, []string{"DrawSprite", "Lookup"}, ex.Calls)
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	ex, err := NewParser().ParseLines(context.Background(), []string{
		"int ReadPad(int port)",
		"{",
		"  return Poll(port);",
		"}",
	})
	require.NoError(t, err)
	require.Len(t, ex.Functions, 1)
	assert.Equal(t, "ReadPad", ex.Functions[0].Name)
	assert.Equal(t, []string{"Poll"}, ex.Calls)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	ex, err := NewParser().Parse(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ex.Functions)
	assert.Empty(t, ex.Calls)
}

func TestParse_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, []byte(decompiled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedParser(t *testing.T) {
	t.Parallel()

	cp, err := NewCachedParser(16)
	require.NoError(t, err)
	defer cp.Close()

	lines := []string{"void A()", "{", "  B();", "}"}

	first, err := cp.ParseLines(context.Background(), lines)
	require.NoError(t, err)
	second, err := cp.ParseLines(context.Background(), lines)
	require.NoError(t, err)

	assert.Same(t, first, second, "unchanged text is served from the cache")
	assert.Equal(t, int64(1), cp.Hits())

	changed, err := cp.ParseLines(context.Background(), []string{"void A()", "{", "  C();", "}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, changed.Calls)
}

func TestCachedParser_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := NewCachedParser(0)
	assert.Error(t, err)
}
