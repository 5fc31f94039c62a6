package lsp

import (
	"sync"

	"github.com/jarredhawkins/linestruct/internal/lines"
)

// DocumentStore manages open text documents
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// Document is an open buffer split into lines
type Document struct {
	URI     string
	Version int
	Content string
	Lines   []string
}

func newDocument(uri string, version int, content string) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		Content: content,
		Lines:   lines.FromText(content),
	}
}

// NewDocumentStore creates a new document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*Document),
	}
}

// Open adds or replaces a document
func (ds *DocumentStore) Open(uri string, version int, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[uri] = newDocument(uri, version, content)
}

// Update replaces the content of an open document. Changes older than the
// stored version are ignored; it reports whether the change was applied
func (ds *DocumentStore) Update(uri string, version int, content string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.docs[uri]
	if !ok || version < doc.Version {
		return false
	}
	ds.docs[uri] = newDocument(uri, version, content)
	return true
}

// Close removes a document
func (ds *DocumentStore) Close(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

// Get returns an open document. Documents are replaced, never mutated, so
// the result stays valid after later updates
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[uri]
	return doc, ok
}

// IsOpen checks if a document is open
func (ds *DocumentStore) IsOpen(uri string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.docs[uri]
	return ok
}
