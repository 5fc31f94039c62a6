package lsp

import (
	"strings"

	"github.com/jarredhawkins/linestruct/internal/index"
	"github.com/jarredhawkins/linestruct/internal/types"
)

// LSP Protocol types - minimal set for outlines, folding and references

// TextDocumentSyncKind defines how text document changes are synced
type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

// Position in a text document
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location in a resource
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// TextDocumentIdentifier identifies a text document
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem represents an open text document
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentPositionParams is a parameter for requests that require a position
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// ReferenceContext includes info about reference requests
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// ReferenceParams for textDocument/references
type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

// DocumentSymbolParams for textDocument/documentSymbol
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// FoldingRangeParams for textDocument/foldingRange
type FoldingRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// WorkspaceSymbolParams for workspace/symbol
type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

// SymbolKind is the LSP symbol kind
type SymbolKind int

const (
	SymbolKindModule    SymbolKind = 2
	SymbolKindNamespace SymbolKind = 3
	SymbolKindClass     SymbolKind = 5
	SymbolKindMethod    SymbolKind = 6
	SymbolKindFunction  SymbolKind = 12
	SymbolKindVariable  SymbolKind = 13
	SymbolKindConstant  SymbolKind = 14
)

// DocumentSymbol is one node of a hierarchical document outline
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is a flat workspace symbol
type SymbolInformation struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Location Location   `json:"location"`
}

// FoldingRange marks a foldable run of lines
type FoldingRange struct {
	StartLine uint32 `json:"startLine"`
	EndLine   uint32 `json:"endLine"`
	Kind      string `json:"kind,omitempty"`
}

// TextDocumentSyncOptions defines text document sync options
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose,omitempty"`
	Change    TextDocumentSyncKind `json:"change,omitempty"`
}

// ServerCapabilities defines what the server can do
type ServerCapabilities struct {
	TextDocumentSync        *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
	DefinitionProvider      bool                     `json:"definitionProvider,omitempty"`
	ReferencesProvider      bool                     `json:"referencesProvider,omitempty"`
	DocumentSymbolProvider  bool                     `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider bool                     `json:"workspaceSymbolProvider,omitempty"`
	FoldingRangeProvider    bool                     `json:"foldingRangeProvider,omitempty"`
}

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the result of the initialize request
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// DidOpenTextDocumentParams for textDocument/didOpen
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent describes changes to a text document
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidChangeTextDocumentParams for textDocument/didChange
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams for textDocument/didClose
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Helper functions

// uriToPath converts a file:// URI to a file path
func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// pathToURI converts a file path to a file:// URI
func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// symbolKind maps block names from the built-in presets to LSP kinds
func symbolKind(blockName string) SymbolKind {
	switch blockName {
	case "function":
		return SymbolKindFunction
	case "method":
		return SymbolKindMethod
	case "class":
		return SymbolKindClass
	case "module":
		return SymbolKindModule
	case "constant":
		return SymbolKindConstant
	case "global":
		return SymbolKindVariable
	default:
		return SymbolKindNamespace
	}
}

// lineLen returns the length of a source line without its terminator
func lineLen(src []string, line int) uint32 {
	if line < 0 || line >= len(src) {
		return 0
	}
	return uint32(len(strings.TrimRight(src[line], "\r\n")))
}

// lastContentLine returns the last non-blank line covered by b, never before
// its header
func lastContentLine(b *types.Block, src []string) int {
	end := b.EndLine()
	if end >= len(src) {
		end = len(src) - 1
	}
	for end > b.Line && strings.TrimSpace(src[end]) == "" {
		end--
	}
	return end
}

// blockRange spans the block from its header to its last non-blank line
func blockRange(b *types.Block, src []string) Range {
	end := lastContentLine(b, src)
	return Range{
		Start: Position{Line: uint32(b.Line)},
		End:   Position{Line: uint32(end), Character: lineLen(src, end)},
	}
}

// headerRange spans the header line only
func headerRange(b *types.Block, src []string) Range {
	return Range{
		Start: Position{Line: uint32(b.Line)},
		End:   Position{Line: uint32(b.Line), Character: lineLen(src, b.Line)},
	}
}

// documentSymbols converts a block tree to an LSP outline. Unnamed leading
// blocks are left out
func documentSymbols(blocks []*types.Block, src []string) []DocumentSymbol {
	var out []DocumentSymbol
	for _, b := range blocks {
		if b.Name == "" {
			continue
		}
		out = append(out, DocumentSymbol{
			Name:           b.Header(),
			Detail:         b.Name,
			Kind:           symbolKind(b.Name),
			Range:          blockRange(b, src),
			SelectionRange: headerRange(b, src),
			Children:       documentSymbols(b.Body, src),
		})
	}
	return out
}

// foldingRanges returns one range per block spanning more than one line
func foldingRanges(blocks []*types.Block, src []string) []FoldingRange {
	var out []FoldingRange
	var walk func([]*types.Block)
	walk = func(bs []*types.Block) {
		for _, b := range bs {
			if end := lastContentLine(b, src); end > b.Line {
				out = append(out, FoldingRange{StartLine: uint32(b.Line), EndLine: uint32(end)})
			}
			walk(b.Body)
		}
	}
	walk(blocks)
	return out
}

// blockLocation points at the header line of an indexed block
func blockLocation(ref index.BlockRef) Location {
	line := uint32(ref.Block.Line)
	return Location{
		URI: pathToURI(ref.Path),
		Range: Range{
			Start: Position{Line: line},
			End:   Position{Line: line, Character: uint32(len(strings.TrimRight(ref.Block.Lines[0], "\r\n")))},
		},
	}
}

// referenceLocation converts a 1-indexed text match to an LSP Location
func referenceLocation(ref *types.Reference) Location {
	return Location{
		URI: pathToURI(ref.FilePath),
		Range: Range{
			Start: Position{
				Line:      uint32(ref.Line - 1), // LSP is 0-indexed
				Character: uint32(ref.Column),
			},
			End: Position{
				Line:      uint32(ref.Line - 1),
				Character: uint32(ref.Column + ref.Length),
			},
		},
	}
}

// extractWordAt extracts the identifier at the given position in the content
func extractWordAt(content string, line, char int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[line], "\r")
	if char < 0 || char >= len(lineText) {
		// Past the end selects the last word
		if char >= len(lineText) && len(lineText) > 0 {
			char = len(lineText) - 1
		} else {
			return ""
		}
	}

	// Cursor right after a word still selects it
	if !isWordChar(lineText[char]) && char > 0 && isWordChar(lineText[char-1]) {
		char--
	}

	start := char
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	end := char
	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return lineText[start:end]
}

// isWordChar returns true if c is a valid identifier character
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}
