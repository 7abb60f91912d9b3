package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/ragchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassageIndex_RequiresConnString(t *testing.T) {
	_, err := NewPassageIndex(context.Background(), "")
	assert.ErrorIs(t, err, ErrConnStringRequired)
}

func TestWithTable(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{name: "plain", table: "passages"},
		{name: "schema qualified", table: "rag.passages_v2"},
		{name: "injection", table: "passages; DROP TABLE x", wantErr: true},
		{name: "empty", table: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := &PassageIndex{table: defaultTable}
			err := WithTable(tt.table)(ix)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTable)
				assert.Equal(t, defaultTable, ix.table)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, ix.table)
		})
	}
}

func TestQueriesUseTable(t *testing.T) {
	ix := &PassageIndex{table: "rag.chunks"}

	lexical := ix.lexicalQuery()
	assert.Contains(t, lexical, "FROM rag.chunks")
	assert.Contains(t, lexical, "plainto_tsquery")

	semantic := ix.semanticQuery()
	assert.Contains(t, semantic, "FROM rag.chunks")
	assert.True(t, strings.Contains(semantic, "<=> $1::vector"))
}

func TestToCandidate(t *testing.T) {
	c := toCandidate("p1", "The motion carried.", "video", map[string]any{
		"doc_id":         "meeting.mp4",
		"video_id":       "Council Meeting",
		"start_time":     float64(125),
		"member-content": true,
	}, 0.82)

	assert.Equal(t, "p1", c.ID)
	assert.Equal(t, 0.82, c.Score)
	assert.Equal(t, core.DocTypeVideo, c.Type)
	assert.Equal(t, "Council Meeting", c.Metadata.VideoID)
	assert.Equal(t, 125.0, c.Metadata.StartTime)
	assert.True(t, c.Metadata.MemberContent)
}
