package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type parsedCell struct {
	text    string
	bgcolor string
}

type parsedSection struct {
	title string
	rows  [][]parsedCell
}

// parseReport walks the rendered document and returns each <h3> title with
// the rows of the table that follows it. The first row is the header.
func parseReport(t *testing.T, doc string) []parsedSection {
	t.Helper()

	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	var sections []parsedSection
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H3:
				sections = append(sections, parsedSection{title: textOf(n)})
			case atom.Tr:
				require.NotEmpty(t, sections, "row outside a section")
				var row []parsedCell
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.DataAtom == atom.Th || c.DataAtom == atom.Td {
						row = append(row, parsedCell{text: textOf(c), bgcolor: attr(c, "bgcolor")})
					}
				}
				last := &sections[len(sections)-1]
				last.rows = append(last.rows, row)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return sections
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func sampleSections() []Section {
	return []Section{
		{
			Name:    "EC2",
			Headers: []string{"ReservedInstancesId", "Start", "State", "End", "InstanceType", "InstanceCount"},
			Rows: [][]string{
				{"ri-1", "2025-11-01 00:00:00", "active", "2026-10-26 00:00:00", "m5.large", "2"},
				{"ri-2", "2025-11-09 00:00:00", "active", "2026-11-09 00:00:00", "c6g.xlarge", "1"},
			},
		},
		{
			Name:    "RDS",
			Headers: []string{"ReservedDBInstanceId", "StartTime", "State", "End", "DBInstanceClass", "DBInstanceCount"},
			Rows:    [][]string{},
		},
	}
}

func TestRenderHTML_RoundTrip(t *testing.T) {
	sections := sampleSections()

	doc, err := RenderHTML(sections)
	require.NoError(t, err)

	parsed := parseReport(t, doc)
	require.Len(t, parsed, len(sections))

	for i, s := range sections {
		assert.Equal(t, s.Name, parsed[i].title)
		require.Len(t, parsed[i].rows, len(s.Rows)+1, s.Name)

		var header []string
		for _, c := range parsed[i].rows[0] {
			header = append(header, c.text)
		}
		assert.Equal(t, s.Headers, header)

		for r, want := range s.Rows {
			var got []string
			for _, c := range parsed[i].rows[r+1] {
				got = append(got, c.text)
			}
			assert.Equal(t, want, got)
		}
	}
}

func TestRenderHTML_HighlightsEndColumn(t *testing.T) {
	doc, err := RenderHTML(sampleSections()[:1])
	require.NoError(t, err)

	parsed := parseReport(t, doc)
	require.Len(t, parsed, 1)

	for _, row := range parsed[0].rows {
		for j, c := range row {
			if j == 3 {
				assert.Equal(t, HighlightColor, c.bgcolor)
			} else {
				assert.Empty(t, c.bgcolor)
			}
		}
	}
}

func TestRenderHTML_NoEndColumnNoHighlight(t *testing.T) {
	doc, err := RenderHTML([]Section{{
		Name:    "Custom",
		Headers: []string{"Id", "end", "Ends"},
		Rows:    [][]string{{"a", "b", "c"}},
	}})
	require.NoError(t, err)

	assert.NotContains(t, doc, "bgcolor")
}

func TestRenderHTML_EmptySectionRendersHeaderOnly(t *testing.T) {
	doc, err := RenderHTML(sampleSections()[1:])
	require.NoError(t, err)

	parsed := parseReport(t, doc)
	require.Len(t, parsed, 1)
	assert.Equal(t, "RDS", parsed[0].title)
	require.Len(t, parsed[0].rows, 1)
	assert.Len(t, parsed[0].rows[0], 6)
	assert.Equal(t, HighlightColor, parsed[0].rows[0][3].bgcolor)
}

func TestRenderHTML_EscapesCells(t *testing.T) {
	doc, err := RenderHTML([]Section{{
		Name:    "A & B",
		Headers: []string{"Name", "End"},
		Rows:    [][]string{{"<script>alert(1)</script>", "x"}},
	}})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<script>")

	parsed := parseReport(t, doc)
	require.Len(t, parsed, 1)
	assert.Equal(t, "A & B", parsed[0].title)
	assert.Equal(t, "<script>alert(1)</script>", parsed[0].rows[1][0].text)
}

func TestRenderHTML_Deterministic(t *testing.T) {
	first, err := RenderHTML(sampleSections())
	require.NoError(t, err)

	second, err := RenderHTML(sampleSections())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderHTML_NoSections(t *testing.T) {
	doc, err := RenderHTML(nil)
	require.NoError(t, err)

	assert.Contains(t, doc, "<body>")
	assert.Empty(t, parseReport(t, doc))
}
