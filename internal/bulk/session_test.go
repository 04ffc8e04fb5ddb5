package bulk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

func TestSessionHappyPath(t *testing.T) {
	s := NewSession()
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Select("upload.csv"))
	require.Equal(t, StateFileSelected, s.State())

	count, err := s.Parse(strings.NewReader("name,brand\nGlacier Mint,Polar Labs\n"))
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, StateParsed, s.State())

	products, err := s.Take()
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, StateIdle, s.State())
}

func TestSessionRejectsOutOfOrderCalls(t *testing.T) {
	s := NewSession()

	_, err := s.Parse(strings.NewReader("name\nX\n"))
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = s.Take()
	require.ErrorIs(t, err, httpx.ErrValidation)

	require.ErrorIs(t, s.Select(""), httpx.ErrValidation)

	require.NoError(t, s.Select("a.csv"))
	require.ErrorIs(t, s.Select("b.csv"), httpx.ErrValidation)
}

func TestSessionParseFailureResets(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select("bad.json"))

	_, err := s.Parse(strings.NewReader("{not json"))
	require.Error(t, err)
	require.Equal(t, StateIdle, s.State())

	// A bad file can never be applied.
	_, err = s.Take()
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSessionCancelFromAnyState(t *testing.T) {
	s := NewSession()
	s.Cancel()
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Select("a.csv"))
	s.Cancel()
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Select("a.csv"))
	_, err := s.Parse(strings.NewReader("name\nX\n"))
	require.NoError(t, err)
	s.Cancel()
	require.Equal(t, StateIdle, s.State())
	_, err = s.Take()
	require.ErrorIs(t, err, httpx.ErrValidation)
}
