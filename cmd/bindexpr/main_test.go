package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		lines bool
		want  []string
	}{
		{"whole", "1 +\n2", false, []string{"1 +\n2"}},
		{"blank", " \n\t", false, nil},
		{"lines", "1+2\n\nx*3\n", true, []string{"1+2", "x*3"}},
		{"crlf", "a\r\nb", true, []string{"a", "b"}},
		{"empty-lines", "", true, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := sources(strings.NewReader(c.in), c.lines)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestInfile(t *testing.T) {
	f, err := infile("", false)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = infile("-", false)
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = infile("/nonexistent/expression/file", false)
	assert.Error(t, err)
}
