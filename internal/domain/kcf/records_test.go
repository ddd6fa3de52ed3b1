package kcf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRecords(t *testing.T) {
	records, err := SplitRecords(strings.NewReader(loadFixture(t, "multi.kcf")))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, err := NewParser().ParseRecord(records[0])
	require.NoError(t, err)
	assert.Equal(t, "C00033", first.Entry)

	second, err := NewParser().ParseRecord(records[1])
	require.NoError(t, err)
	assert.Equal(t, "C01407", second.Entry)
}

func TestSplitRecords_TrailingRecordAndBlanks(t *testing.T) {
	in := "\n///\n\n" + pad("ATOM") + "1\n" + pad("") + "1 O5a O 0 0\n"
	records, err := SplitRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)

	g, err := Parse(records[0])
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumAtoms())
}

func TestSplitRecords_Empty(t *testing.T) {
	records, err := SplitRecords(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

//Personal.AI order the ending
