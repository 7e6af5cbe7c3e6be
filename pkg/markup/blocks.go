package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type BlockType string

const (
	BlockText BlockType = "text"
	BlockCode BlockType = "code"
)

// Block is one renderable piece of a chat message.
type Block struct {
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	Language string    `json:"language,omitempty"`
	// Open marks a fence that has not been closed yet, which happens mid-stream.
	Open bool `json:"open,omitempty"`
}

// ParseBlocks splits markdown into prose and fenced code blocks.
// It is called on the whole accumulated text for every chunk.
// Prose keeps its markdown source; only top-level fences become code blocks.
func ParseBlocks(markdown string) []Block {
	src := []byte(markdown)
	doc := converter.Parser().Parse(text.NewReader(src))

	var blocks []Block
	addText := func(from, to int) {
		if from >= to {
			return
		}
		if t := strings.TrimSpace(string(src[from:to])); t != "" {
			blocks = append(blocks, Block{Type: BlockText, Content: t})
		}
	}

	cursor := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			continue
		}

		start, contentEnd := fenceBounds(src, fence, cursor)
		addText(cursor, start)

		var code bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}

		open := n.NextSibling() == nil && len(bytes.TrimSpace(src[contentEnd:])) == 0
		blocks = append(blocks, Block{
			Type:     BlockCode,
			Content:  strings.TrimSuffix(code.String(), "\n"),
			Language: string(fence.Language(src)),
			Open:     open,
		})

		if open {
			cursor = len(src)
		} else {
			// contentEnd is the start of the closing fence line.
			cursor = lineEnd(src, contentEnd)
		}
	}
	addText(cursor, len(src))
	return blocks
}

// fenceBounds returns where the opening fence line starts and where the
// fenced content ends.
func fenceBounds(src []byte, fence *ast.FencedCodeBlock, from int) (start, contentEnd int) {
	lines := fence.Lines()
	switch {
	case lines.Len() > 0:
		// The opening fence is the line above the first content line.
		first := lineStart(src, lines.At(0).Start)
		return lineStart(src, first-1), lines.At(lines.Len() - 1).Stop
	case fence.Info != nil:
		return lineStart(src, fence.Info.Segment.Start), lineEnd(src, fence.Info.Segment.Stop)
	}
	// An empty fence without info string carries no positions.
	for i := from; i < len(src); i = lineEnd(src, i) {
		line := bytes.TrimSpace(src[i:lineEnd(src, i)])
		if bytes.HasPrefix(line, []byte("```")) || bytes.HasPrefix(line, []byte("~~~")) {
			return i, lineEnd(src, i)
		}
	}
	return from, len(src)
}

func lineStart(src []byte, i int) int {
	if i <= 0 {
		return 0
	}
	return bytes.LastIndexByte(src[:i], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line at i.
func lineEnd(src []byte, i int) int {
	if i >= len(src) {
		return len(src)
	}
	if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(src)
}
