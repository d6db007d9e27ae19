package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks_InlineLinks_ReturnsDestinations(t *testing.T) {
	body := []byte(`# Index

- [ISketchManager](../types/ISketchManager/_overview.md) - manages sketches
- [swSegType_e](../enums/swSegType_e/_overview.md) (enum)
`)
	links := ExtractLinks(body)
	require.Len(t, links, 2)
	require.Equal(t, "../types/ISketchManager/_overview.md", links[0].Destination)
	require.Equal(t, "../enums/swSegType_e/_overview.md", links[1].Destination)
}

func TestExtractLinks_TableCells_LinksFound(t *testing.T) {
	body := []byte("| Type |\n|------|\n| [IFoo](../types/IFoo/_overview.md) |\n")
	links := ExtractLinks(body)
	require.NotEmpty(t, links)
	require.Equal(t, "../types/IFoo/_overview.md", links[0].Destination)
}

func TestExtractLinks_NoLinks_ReturnsEmpty(t *testing.T) {
	require.Empty(t, ExtractLinks([]byte("plain text, no links")))
}
