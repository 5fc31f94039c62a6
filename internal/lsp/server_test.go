package lsp

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"

	"github.com/jarredhawkins/linestruct/internal/index"
	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/parser"
)

const greeter = `import os

class Greeter:
    def greet(self, name):
        return "hi " + name


def main():
    Greeter().greet("x")
`

func newTestIndex(t *testing.T, root string) *index.Index {
	t.Helper()
	registry := parser.NewRegistry()
	parser.RegisterDefaults(registry)
	idx, err := index.New(root, registry, index.Options{CacheSize: 8})
	require.NoError(t, err)
	return idx
}

// startServer runs a server over an in-memory pipe and returns a client conn
func startServer(t *testing.T, idx *index.Index) jsonrpc2.Conn {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewServer(idx, nil).Serve(ctx, serverSide, serverSide)
	}()

	client := jsonrpc2.NewConn(jsonrpc2.NewStream(clientSide))
	client.Go(ctx, jsonrpc2.MethodNotFoundHandler)

	t.Cleanup(func() {
		client.Close()
		serverSide.Close()
		cancel()
		<-done
	})
	return client
}

func TestDocumentSymbols(t *testing.T) {
	src := lines.FromText(greeter)
	registry := parser.NewRegistry()
	parser.RegisterDefaults(registry)
	blocks := parser.NewScanner(registry).Parse(src)

	symbols := documentSymbols(blocks, src)
	require.Len(t, symbols, 3)

	class := symbols[1]
	assert.Equal(t, "class Greeter:", class.Name)
	assert.Equal(t, "class", class.Detail)
	assert.Equal(t, SymbolKindClass, class.Kind)
	// Trailing blank lines are not part of the range
	assert.Equal(t, Range{Start: Position{Line: 2}, End: Position{Line: 4, Character: 27}}, class.Range)
	assert.Equal(t, Range{Start: Position{Line: 2}, End: Position{Line: 2, Character: 14}}, class.SelectionRange)

	require.Len(t, class.Children, 1)
	assert.Equal(t, SymbolKindMethod, class.Children[0].Kind)
	assert.Equal(t, SymbolKindFunction, symbols[2].Kind)
	assert.Equal(t, SymbolKindVariable, symbols[0].Kind)
}

func TestFoldingRanges(t *testing.T) {
	src := lines.FromText(greeter)
	registry := parser.NewRegistry()
	parser.RegisterDefaults(registry)

	ranges := foldingRanges(parser.NewScanner(registry).Parse(src), src)
	assert.Equal(t, []FoldingRange{
		{StartLine: 2, EndLine: 4},
		{StartLine: 3, EndLine: 4},
		{StartLine: 7, EndLine: 8},
	}, ranges)
}

func TestExtractWordAt(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		char     int
		expected string
	}{
		{"on a word", "    Greeter().greet(x)", 16, "greet"},
		{"start of word", "def load_config(path):", 4, "load_config"},
		{"right after a word", "foo(bar)", 3, "foo"},
		{"past the end", "return value", 40, "value"},
		{"on punctuation", "a = (b)", 2, ""},
		{"dunder", "    def __init__(self):", 10, "__init__"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractWordAt(tt.line, 0, tt.char)
			if result != tt.expected {
				t.Errorf("extractWordAt(%q, 0, %d) = %q, want %q", tt.line, tt.char, result, tt.expected)
			}
		})
	}

	assert.Equal(t, "", extractWordAt("x", 3, 0))
}

func TestDocumentStore(t *testing.T) {
	ds := NewDocumentStore()
	ds.Open("file:///a.py", 1, "x = 1\n")

	doc, ok := ds.Get("file:///a.py")
	require.True(t, ok)
	assert.Equal(t, []string{"x = 1\n"}, doc.Lines)

	assert.True(t, ds.Update("file:///a.py", 3, "y = 2\n"))
	assert.False(t, ds.Update("file:///a.py", 2, "stale\n"))
	assert.False(t, ds.Update("file:///b.py", 1, "never opened\n"))

	doc, _ = ds.Get("file:///a.py")
	assert.Equal(t, "y = 2\n", doc.Content)
	assert.Equal(t, 3, doc.Version)

	ds.Close("file:///a.py")
	assert.False(t, ds.IsOpen("file:///a.py"))
}

func TestServerSession(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "greeter.py")
	require.NoError(t, os.WriteFile(path, []byte(greeter), 0644))

	idx := newTestIndex(t, root)
	require.NoError(t, idx.Build(context.Background()))

	client := startServer(t, idx)
	ctx := context.Background()
	uri := pathToURI(path)

	var init InitializeResult
	_, err := client.Call(ctx, "initialize", map[string]interface{}{}, &init)
	require.NoError(t, err)
	assert.True(t, init.Capabilities.DocumentSymbolProvider)
	assert.Equal(t, "linestruct", init.ServerInfo.Name)

	t.Run("document symbols from the index", func(t *testing.T) {
		var symbols []DocumentSymbol
		_, err := client.Call(ctx, "textDocument/documentSymbol",
			DocumentSymbolParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &symbols)
		require.NoError(t, err)
		require.Len(t, symbols, 3)
		assert.Equal(t, "def greet(self, name):", symbols[1].Children[0].Name)
	})

	t.Run("document symbols from an open buffer", func(t *testing.T) {
		require.NoError(t, client.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
			TextDocument: TextDocumentItem{URI: uri, Version: 1, Text: "def only():\n    pass\n"},
		}))

		var symbols []DocumentSymbol
		_, err := client.Call(ctx, "textDocument/documentSymbol",
			DocumentSymbolParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &symbols)
		require.NoError(t, err)
		require.Len(t, symbols, 1)
		assert.Equal(t, "def only():", symbols[0].Name)

		require.NoError(t, client.Notify(ctx, "textDocument/didClose", DidCloseTextDocumentParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
		}))
	})

	t.Run("folding ranges", func(t *testing.T) {
		var ranges []FoldingRange
		_, err := client.Call(ctx, "textDocument/foldingRange",
			FoldingRangeParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &ranges)
		require.NoError(t, err)
		assert.Len(t, ranges, 3)
	})

	t.Run("workspace symbols", func(t *testing.T) {
		var symbols []SymbolInformation
		_, err := client.Call(ctx, "workspace/symbol", WorkspaceSymbolParams{Query: "greet"}, &symbols)
		require.NoError(t, err)
		require.Len(t, symbols, 2)
		assert.Equal(t, SymbolKindClass, symbols[0].Kind)
		assert.Equal(t, uint32(3), symbols[1].Location.Range.Start.Line)
	})

	t.Run("definition", func(t *testing.T) {
		var loc Location
		_, err := client.Call(ctx, "textDocument/definition", TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
			Position:     Position{Line: 8, Character: 16}, // on greet in main
		}, &loc)
		require.NoError(t, err)
		assert.Equal(t, uri, loc.URI)
		assert.Equal(t, uint32(3), loc.Range.Start.Line)
	})

	t.Run("references", func(t *testing.T) {
		var locs []Location
		_, err := client.Call(ctx, "textDocument/references", ReferenceParams{
			TextDocumentPositionParams: TextDocumentPositionParams{
				TextDocument: TextDocumentIdentifier{URI: uri},
				Position:     Position{Line: 3, Character: 9},
			},
			Context: ReferenceContext{IncludeDeclaration: true},
		}, &locs)
		require.NoError(t, err)
		// definition and call, the header is not added twice
		require.Len(t, locs, 2)
		assert.Equal(t, uint32(3), locs[0].Range.Start.Line)
		assert.Equal(t, uint32(8), locs[1].Range.Start.Line)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := client.Call(ctx, "textDocument/hover", map[string]interface{}{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "method not supported")
	})
}
