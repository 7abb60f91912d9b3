package core

import (
	"strconv"
	"strings"
)

// Index field names as they appear in stored passage metadata.
const (
	FieldDocID            = "doc_id"
	FieldVideoID          = "video_id"
	FieldPodcastID        = "podcast_id"
	FieldSourceURL        = "source-url"
	FieldMemberContent    = "member-content"
	FieldStartTime        = "start_time"
	FieldPageNumber       = "page_number"
	FieldParentFolderName = "parent-folder-name"
	FieldParentFolderURL  = "parent-folder-url"
)

// MetadataFromMap decodes the loosely typed metadata document an index returns.
// Unknown keys are ignored and malformed values fall back to zero values.
func MetadataFromMap(m map[string]any) Metadata {
	return Metadata{
		DocID:            stringField(m, FieldDocID),
		VideoID:          stringField(m, FieldVideoID),
		PodcastID:        stringField(m, FieldPodcastID),
		SourceURL:        stringField(m, FieldSourceURL),
		MemberContent:    boolField(m, FieldMemberContent),
		StartTime:        floatField(m, FieldStartTime),
		PageNumber:       int(floatField(m, FieldPageNumber)),
		ParentFolderName: stringField(m, FieldParentFolderName),
		ParentFolderURL:  stringField(m, FieldParentFolderURL),
	}
}

// ParseDocType maps an index doc_type value to a DocType. Unknown values are text.
func ParseDocType(s string) DocType {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case DocTypePDF:
		return DocTypePDF
	case DocTypeVideo:
		return DocTypeVideo
	case DocTypePodcast:
		return DocTypePodcast
	default:
		return DocTypeText
	}
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// member-content is written as a JSON bool by newer ingesters and as "true" by older ones.
func boolField(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
