package citation

import (
	"slices"

	"github.com/poiesic/ragchat/core"
)

// ModelDocument is the view of a source the model is allowed to see.
// It never carries links or access flags.
type ModelDocument struct {
	Token        core.ReferenceToken `json:"token"`
	DocumentName string              `json:"document_name"`
	Passage      string              `json:"passage"`
}

// Sources is the immutable set of entries minted for one request.
type Sources struct {
	entries []core.SourceEntry
	byToken map[core.ReferenceToken]int
}

// NewSources builds a Sources from entries in the order given.
// If two entries share a token the later one wins lookups.
func NewSources(entries ...core.SourceEntry) *Sources {
	s := &Sources{
		entries: slices.Clone(entries),
		byToken: make(map[core.ReferenceToken]int, len(entries)),
	}
	for i, e := range s.entries {
		s.byToken[e.Token] = i
	}
	return s
}

// Len returns the number of entries.
func (s *Sources) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in selection order.
func (s *Sources) Entries() []core.SourceEntry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Lookup finds the entry for a token.
func (s *Sources) Lookup(token core.ReferenceToken) (core.SourceEntry, bool) {
	if s == nil {
		return core.SourceEntry{}, false
	}
	i, ok := s.byToken[token]
	if !ok {
		return core.SourceEntry{}, false
	}
	return s.entries[i], true
}

// ModelDocuments returns the model-visible view in selection order.
func (s *Sources) ModelDocuments() []ModelDocument {
	docs := make([]ModelDocument, 0, s.Len())
	for _, e := range s.Entries() {
		docs = append(docs, ModelDocument{
			Token:        e.Token,
			DocumentName: e.DocumentName,
			Passage:      e.Passage,
		})
	}
	return docs
}

// CitationTargets returns the token to source URL map placed in the prompt.
func (s *Sources) CitationTargets() map[string]string {
	targets := make(map[string]string, s.Len())
	for _, e := range s.Entries() {
		targets[string(e.Token)] = e.SourceURL
	}
	return targets
}

// DocumentIDs returns the document identity of every entry in selection order.
func (s *Sources) DocumentIDs() []string {
	ids := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		ids = append(ids, e.DocumentID)
	}
	return ids
}
