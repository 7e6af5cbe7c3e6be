package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("# Summary\n\n- one\n- two")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Summary</h1>")
	assert.Contains(t, out, "<li>one</li>")
}

func TestIsEmptyHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"<p></p>", true},
		{" <p></p>\n", true},
		{"<p>x</p>", false},
		{"<p><br></p>", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEmptyHTML(tt.in), tt.in)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "paragraphs", in: "<p>Hello</p><p>World</p>", want: "Hello World"},
		{name: "entities", in: "<p>Tom &amp; Jerry</p>", want: "Tom & Jerry"},
		{name: "script dropped", in: "<p>a</p><script>alert(1)</script><p>b</p>", want: "a b"},
		{name: "no tags", in: "  plain\ntext  ", want: "plain text"},
		{name: "inline tags", in: "<p>very <strong>bold</strong> move</p>", want: "very bold move"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "prose only",
			in:   "Hello there",
			want: []Block{{Type: BlockText, Content: "Hello there"}},
		},
		{
			name: "closed fence",
			in:   "Try this:\n```go\nfmt.Println(1)\n```\nDone.",
			want: []Block{
				{Type: BlockText, Content: "Try this:"},
				{Type: BlockCode, Content: "fmt.Println(1)", Language: "go"},
				{Type: BlockText, Content: "Done."},
			},
		},
		{
			name: "fence still streaming",
			in:   "Code:\n```py\nprint(",
			want: []Block{
				{Type: BlockText, Content: "Code:"},
				{Type: BlockCode, Content: "print(", Language: "py", Open: true},
			},
		},
		{
			name: "opening fence only",
			in:   "Intro\n```go",
			want: []Block{
				{Type: BlockText, Content: "Intro"},
				{Type: BlockCode, Content: "", Language: "go", Open: true},
			},
		},
		{
			name: "empty fence without language",
			in:   "```\n```\nafter",
			want: []Block{
				{Type: BlockCode, Content: ""},
				{Type: BlockText, Content: "after"},
			},
		},
		{
			name: "two fences keep prose markup",
			in:   "# Plan\n```sh\nmake\n```\n- one\n- two\n~~~\nx\n\ny\n~~~",
			want: []Block{
				{Type: BlockText, Content: "# Plan"},
				{Type: BlockCode, Content: "make", Language: "sh"},
				{Type: BlockText, Content: "- one\n- two"},
				{Type: BlockCode, Content: "x\n\ny"},
			},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseBlocks(tt.in)); diff != "" {
				t.Errorf("ParseBlocks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
