package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/index"
	"github.com/jarredhawkins/linestruct/internal/types"
)

// Version is reported to clients in the initialize response
const Version = "0.1.0"

// Server implements the LSP server
type Server struct {
	index     *index.Index
	documents *DocumentStore
	logger    *zap.Logger
}

// NewServer creates a new LSP server; a nil logger discards log output
func NewServer(idx *index.Index, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		index:     idx,
		documents: NewDocumentStore(),
		logger:    logger,
	}
}

// Serve starts the LSP server on the given reader/writer
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("LSP request", zap.String("method", req.Method()))

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return nil
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(ctx, reply, req)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(ctx, reply, req)
	case "textDocument/definition":
		return s.handleDefinition(ctx, reply, req)
	case "textDocument/references":
		return s.handleReferences(ctx, reply, req)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

// decode unmarshals request params, replying InvalidParams on failure
func decode(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, v interface{}) (bool, error) {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return false, reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: err.Error(),
		})
	}
	return true, nil
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			FoldingRangeProvider:    true,
		},
		ServerInfo: &ServerInfo{
			Name:    "linestruct",
			Version: Version,
		},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DocumentSymbolParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	blocks, src, err := s.outline(params.TextDocument.URI)
	if err != nil {
		s.logger.Warn("outline failed", zap.String("uri", params.TextDocument.URI), zap.Error(err))
		return reply(ctx, nil, nil)
	}

	symbols := documentSymbols(blocks, src)
	if symbols == nil {
		symbols = []DocumentSymbol{}
	}
	return reply(ctx, symbols, nil)
}

func (s *Server) handleFoldingRange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params FoldingRangeParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	blocks, src, err := s.outline(params.TextDocument.URI)
	if err != nil {
		s.logger.Warn("outline failed", zap.String("uri", params.TextDocument.URI), zap.Error(err))
		return reply(ctx, nil, nil)
	}

	ranges := foldingRanges(blocks, src)
	if ranges == nil {
		ranges = []FoldingRange{}
	}
	return reply(ctx, ranges, nil)
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params WorkspaceSymbolParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	refs := s.index.FindBlocks(params.Query)
	symbols := make([]SymbolInformation, 0, len(refs))
	for _, ref := range refs {
		symbols = append(symbols, SymbolInformation{
			Name:     ref.Block.Header(),
			Kind:     symbolKind(ref.Block.Name),
			Location: blockLocation(ref),
		})
	}
	return reply(ctx, symbols, nil)
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	word := s.wordAt(params.TextDocument.URI, params.Position)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	s.logger.Debug("definition request", zap.String("word", word))

	// Same-file definitions first
	path := uriToPath(params.TextDocument.URI)
	var same, other []Location
	for _, ref := range s.index.FindDefinitions(word) {
		if ref.Path == path {
			same = append(same, blockLocation(ref))
		} else {
			other = append(other, blockLocation(ref))
		}
	}
	locations := append(same, other...)

	switch len(locations) {
	case 0:
		return reply(ctx, nil, nil)
	case 1:
		return reply(ctx, locations[0], nil)
	default:
		return reply(ctx, locations, nil)
	}
}

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ReferenceParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	word := s.wordAt(params.TextDocument.URI, params.Position)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	s.logger.Debug("references request", zap.String("word", word))

	// Deduplicate by location key (file:line:col)
	seen := make(map[string]struct{})
	refLines := make(map[string]struct{})
	locations := []Location{}

	for _, ref := range s.index.FindReferences(word) {
		key := fmt.Sprintf("%s:%d:%d", ref.FilePath, ref.Line, ref.Column)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		refLines[fmt.Sprintf("%s:%d", ref.FilePath, ref.Line-1)] = struct{}{}
		locations = append(locations, referenceLocation(ref))
	}

	// Declarations are text matches too; a header is added only when no
	// match was found on its line
	if params.Context.IncludeDeclaration {
		for _, ref := range s.index.FindDefinitions(word) {
			if _, exists := refLines[fmt.Sprintf("%s:%d", ref.Path, ref.Block.Line)]; exists {
				continue
			}
			locations = append(locations, blockLocation(ref))
		}
	}

	return reply(ctx, locations, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.documents.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if len(params.ContentChanges) > 0 {
		// Full sync mode - just take the last content
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.documents.Update(params.TextDocument.URI, params.TextDocument.Version, text)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.documents.Close(params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

// outline parses the open buffer for uri, falling back to the index and then
// to the file on disk
func (s *Server) outline(uri string) ([]*types.Block, []string, error) {
	if doc, ok := s.documents.Get(uri); ok {
		return s.index.Parse([]byte(doc.Content)), doc.Lines, nil
	}

	path := uriToPath(uri)
	if blocks := s.index.Outline(path); blocks != nil {
		return blocks, s.index.Lines(path), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc := newDocument(uri, 0, string(content))
	return s.index.Parse(content), doc.Lines, nil
}

// wordAt extracts the identifier under the cursor from the open buffer or
// the file on disk
func (s *Server) wordAt(uri string, pos Position) string {
	var content string
	if doc, ok := s.documents.Get(uri); ok {
		content = doc.Content
	} else {
		data, err := os.ReadFile(uriToPath(uri))
		if err != nil {
			s.logger.Warn("failed to read file", zap.String("uri", uri), zap.Error(err))
			return ""
		}
		content = string(data)
	}
	return extractWordAt(content, int(pos.Line), int(pos.Character))
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}
