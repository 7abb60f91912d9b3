package citation

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/ragchat/core"
)

// LinkResolver turns a stored source location into a link a reader can open.
type LinkResolver interface {
	ResolveLink(ctx context.Context, rawURL string) (string, error)
}

// NewToken mints a token from the first 8 hex characters of a random UUID.
// Collisions within a request are possible and not checked.
func NewToken() core.ReferenceToken {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return core.ReferenceToken(hex[:core.TokenLength])
}

// Tokenizer assigns reference tokens to selected passages.
type Tokenizer struct {
	links    LinkResolver
	newToken func() core.ReferenceToken
	logger   *slog.Logger
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithLinkResolver resolves source URLs (for example presigning s3:// links).
func WithLinkResolver(r LinkResolver) TokenizerOption {
	return func(t *Tokenizer) {
		t.links = r
	}
}

// WithTokenSource replaces the random token generator.
func WithTokenSource(fn func() core.ReferenceToken) TokenizerOption {
	return func(t *Tokenizer) {
		if fn != nil {
			t.newToken = fn
		}
	}
}

// WithTokenizerLogger sets a custom logger.
func WithTokenizerLogger(logger *slog.Logger) TokenizerOption {
	return func(t *Tokenizer) {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
	}
}

// NewTokenizer creates a Tokenizer.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		newToken: NewToken,
		logger:   slog.Default().With("component", "tokenizer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize mints one entry per selected candidate, keeping their order.
// A link that fails to resolve is kept as stored.
func (t *Tokenizer) Tokenize(ctx context.Context, selected []core.RankedCandidate) *Sources {
	entries := make([]core.SourceEntry, 0, len(selected))
	for _, rc := range selected {
		entries = append(entries, t.entry(ctx, &rc.Candidate))
	}
	return NewSources(entries...)
}

func (t *Tokenizer) entry(ctx context.Context, c *core.Candidate) core.SourceEntry {
	md := c.Metadata
	e := core.SourceEntry{
		Token:            t.newToken(),
		DocumentID:       c.Key(),
		DocumentName:     documentName(md),
		Passage:          c.Passage,
		Title:            Title(c.Type, md),
		SourceURL:        t.resolveLink(ctx, md.SourceURL),
		DocType:          c.Type,
		MemberContent:    md.MemberContent,
		ParentFolderName: md.ParentFolderName,
		ParentFolderURL:  md.ParentFolderURL,
	}
	if c.Type.IsTimed() {
		start := md.StartTime
		e.StartTime = &start
	}
	return e
}

func (t *Tokenizer) resolveLink(ctx context.Context, raw string) string {
	if t.links == nil || raw == "" {
		return raw
	}
	link, err := t.links.ResolveLink(ctx, raw)
	if err != nil {
		t.logger.Warn("failed to resolve source link, keeping stored url", "url", raw, "err", err)
		return raw
	}
	return link
}

// Title derives the human-readable citation title for a document.
func Title(docType core.DocType, md core.Metadata) string {
	switch docType {
	case core.DocTypeVideo:
		return orDefault(md.VideoID, "Video")
	case core.DocTypePodcast:
		return orDefault(md.PodcastID, "Podcast")
	case core.DocTypePDF:
		return orDefault(md.DocID, "PDF Document")
	default:
		return orDefault(md.DocID, "Document")
	}
}

// documentName is the doc id, or the file name of the source when there is none.
func documentName(md core.Metadata) string {
	if md.DocID != "" {
		return md.DocID
	}
	if md.SourceURL == "" {
		return ""
	}
	u, err := url.Parse(md.SourceURL)
	if err != nil || u.Path == "" {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
