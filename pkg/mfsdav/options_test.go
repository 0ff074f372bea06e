package mfsdav

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenOptionsFromFlags(t *testing.T) {
	tests := []struct {
		flag     int
		expected OpenOptions
	}{
		{flag: os.O_RDONLY, expected: OpenOptions{Read: true}},
		{flag: os.O_RDWR, expected: OpenOptions{Read: true, Write: true}},
		{flag: os.O_RDWR | os.O_CREATE | os.O_TRUNC, expected: OpenOptions{Read: true, Write: true, Create: true, Truncate: true}},
		{flag: os.O_WRONLY | os.O_CREATE | os.O_EXCL, expected: OpenOptions{Write: true, Create: true, CreateNew: true}},
		{flag: os.O_WRONLY | os.O_APPEND, expected: OpenOptions{Write: true, Append: true}},
		{flag: os.O_RDONLY | os.O_EXCL, expected: OpenOptions{Read: true}},
	}

	for _, test := range tests {
		require.Equalf(t, test.expected, OpenOptionsFromFlags(test.flag), "flag %#x", test.flag)
	}

	require.False(t, OpenOptions{Read: true}.Modifies())
	require.True(t, OpenOptions{Read: true, Write: true}.Modifies())
}
