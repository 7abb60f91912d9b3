package chat

import (
	"github.com/poiesic/ragchat/ai"
	"github.com/poiesic/ragchat/citation"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/retrieval"
)

// Monitor provides hooks to observe a Respond call.
// Implement this interface to trace intermediate results of each stage.
type Monitor interface {
	Start(sessionID, query string)
	AfterRetrieval(hits *retrieval.Hits)
	AfterFusion(pool []core.RankedCandidate)
	AfterSelection(selected []core.RankedCandidate)
	AfterTokenization(sources *citation.Sources)
	AfterHistory(history []*core.ConversationMessage)
	AfterPrompt(prompt string)
	AfterGeneration(generation ai.Generation)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                            {}
func (n *noopMonitor) AfterRetrieval(_ *retrieval.Hits)             {}
func (n *noopMonitor) AfterFusion(_ []core.RankedCandidate)         {}
func (n *noopMonitor) AfterSelection(_ []core.RankedCandidate)      {}
func (n *noopMonitor) AfterTokenization(_ *citation.Sources)        {}
func (n *noopMonitor) AfterHistory(_ []*core.ConversationMessage)   {}
func (n *noopMonitor) AfterPrompt(_ string)                         {}
func (n *noopMonitor) AfterGeneration(_ ai.Generation)              {}
func (n *noopMonitor) Finish(_ *Response)                           {}
