package citation

import (
	"cmp"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/ragchat/core"
)

// Badges rendered after each citation and meeting.
const (
	BadgeSubscriber = "[Subscriber-only]"
	BadgePublic     = "[Public]"
)

// MeetingsHeader introduces the appended meeting list.
const MeetingsHeader = "**Meetings referenced:**"

var (
	tokenMarker = regexp.MustCompile(`<([a-f0-9]{8})>`)
	anyMarker   = regexp.MustCompile(`<[^<>]*>`)
	slotMarker  = regexp.MustCompile("\x00([0-9]+)\x00")
)

// Badge returns the access badge for a member-content flag.
func Badge(memberContent bool) string {
	if memberContent {
		return BadgeSubscriber
	}
	return BadgePublic
}

// Resolver rewrites model output into reader-facing markdown.
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default().With("component", "resolver")
	}
	return &Resolver{logger: logger}
}

type meeting struct {
	name, url     string
	memberContent bool
}

// Resolve replaces known <token> markers with citations, strips every other
// <...> span, and appends the meetings of the resolved citations.
// Resolve never fails and applying it to its own output changes nothing.
//
// Citations are parked in NUL-delimited slots while spans are stripped, so a
// token wrapped in stray brackets keeps its citation and stripping can repeat
// until no span is left.
func (r *Resolver) Resolve(text string, sources *Sources) string {
	seen := make(map[meeting]bool)
	var meetings []meeting
	var citations []string
	dropped := 0

	out := tokenMarker.ReplaceAllStringFunc(strings.ReplaceAll(text, "\x00", ""), func(marker string) string {
		token := core.ReferenceToken(marker[1 : len(marker)-1])
		entry, ok := sources.Lookup(token)
		if !ok {
			dropped++
			return ""
		}
		if entry.HasMeeting() {
			m := meeting{
				name:          sanitizeText(entry.ParentFolderName),
				url:           sanitizeURL(entry.ParentFolderURL),
				memberContent: entry.MemberContent,
			}
			if !seen[m] {
				seen[m] = true
				meetings = append(meetings, m)
			}
		}
		citations = append(citations, formatCitation(entry))
		return "\x00" + strconv.Itoa(len(citations)-1) + "\x00"
	})

	out = stripSpans(out)
	out = slotMarker.ReplaceAllStringFunc(out, func(slot string) string {
		i, _ := strconv.Atoi(slot[1 : len(slot)-1])
		return citations[i]
	})

	if dropped > 0 {
		r.logger.Debug("dropped unknown citation tokens", "count", dropped)
	}

	if len(meetings) == 0 {
		return out
	}
	return out + formatMeetings(meetings)
}

// stripSpans removes <...> spans until none remain. A span enclosing citation
// slots is replaced by those slots.
func stripSpans(s string) string {
	for {
		next := anyMarker.ReplaceAllStringFunc(s, func(span string) string {
			return strings.Join(slotMarker.FindAllString(span, -1), "")
		})
		if next == s {
			return s
		}
		s = next
	}
}

func formatCitation(e core.SourceEntry) string {
	link := sanitizeURL(e.SourceURL)
	if e.DocType.IsTimed() && e.StartTime != nil && *e.StartTime != 0 {
		link += "#t=" + strconv.FormatFloat(*e.StartTime, 'f', -1, 64)
	}
	return fmt.Sprintf("[%s](%s) — _%s_", sanitizeText(e.Title), link, Badge(e.MemberContent))
}

func formatMeetings(meetings []meeting) string {
	slices.SortFunc(meetings, func(a, b meeting) int {
		if c := cmp.Compare(a.name, b.name); c != 0 {
			return c
		}
		if c := cmp.Compare(a.url, b.url); c != 0 {
			return c
		}
		return cmp.Compare(boolRank(a.memberContent), boolRank(b.memberContent))
	})

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(MeetingsHeader)
	sb.WriteString("\n")
	for _, m := range meetings {
		fmt.Fprintf(&sb, "- [%s](%s) — *%s*\n", m.name, m.url, Badge(m.memberContent))
	}
	return sb.String()
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Angle brackets in rendered text would be taken for markers on a later pass.
var (
	textBrackets = strings.NewReplacer("<", "", ">", "")
	urlBrackets  = strings.NewReplacer("<", "%3C", ">", "%3E")
)

func sanitizeText(s string) string {
	return textBrackets.Replace(s)
}

func sanitizeURL(s string) string {
	return urlBrackets.Replace(s)
}
