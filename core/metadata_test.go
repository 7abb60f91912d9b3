package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataFromMap(t *testing.T) {
	m := map[string]any{
		"doc_id":             "minutes.pdf",
		"video_id":           "Board Meeting",
		"source-url":         "s3://bucket/minutes.pdf",
		"member-content":     "true",
		"start_time":         12.5,
		"page_number":        float64(3),
		"parent-folder-name": "March Board",
		"parent-folder-url":  "https://example.org/march",
		"ignored":            42,
	}

	got := MetadataFromMap(m)
	assert.Equal(t, Metadata{
		DocID:            "minutes.pdf",
		VideoID:          "Board Meeting",
		SourceURL:        "s3://bucket/minutes.pdf",
		MemberContent:    true,
		StartTime:        12.5,
		PageNumber:       3,
		ParentFolderName: "March Board",
		ParentFolderURL:  "https://example.org/march",
	}, got)
}

func TestMetadataFromMap_MemberContent(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "bool true", value: true, want: true},
		{name: "bool false", value: false, want: false},
		{name: "string true", value: "true", want: true},
		{name: "string True", value: "True", want: true},
		{name: "string false", value: "false", want: false},
		{name: "missing", value: nil, want: false},
		{name: "number", value: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MetadataFromMap(map[string]any{"member-content": tt.value})
			assert.Equal(t, tt.want, got.MemberContent)
		})
	}
}

func TestMetadataFromMap_Empty(t *testing.T) {
	assert.Equal(t, Metadata{}, MetadataFromMap(nil))
}

func TestParseDocType(t *testing.T) {
	assert.Equal(t, DocTypePDF, ParseDocType("pdf"))
	assert.Equal(t, DocTypeVideo, ParseDocType(" Video "))
	assert.Equal(t, DocTypePodcast, ParseDocType("podcast"))
	assert.Equal(t, DocTypeText, ParseDocType("docx"))
	assert.Equal(t, DocTypeText, ParseDocType(""))
}
