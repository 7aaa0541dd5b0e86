package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s, 32)

	_, err = hex.DecodeString(s)
	require.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestGenerateRandByteArray_Length(t *testing.T) {
	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	require.Len(t, a, 24)
	require.Len(t, b, 24)
	if string(a) == string(b) {
		t.Logf("two random arrays are identical; extremely unlikely")
	}
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("password")
	WipeByteArray(buf)
	require.Equal(t, make([]byte, 8), buf)

	WipeByteArray(nil)
}

func TestSentinels_MatchWhenWrapped(t *testing.T) {
	err := fmt.Errorf("category %q: %w", "간증", ErrDuplicateName)
	require.True(t, errors.Is(err, ErrDuplicateName))
	require.False(t, errors.Is(err, ErrorNotFound))
}
