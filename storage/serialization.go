// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/ragchat/core"
)

// Records are encoded field by field in declaration order. Slices are written as
// a varint length followed by their elements. Floats travel as their IEEE bits.

// MarshalMessage serializes a ConversationMessage to bytes.
func MarshalMessage(msg *core.ConversationMessage) []byte {
	size := ord.String.Size(msg.SessionID) +
		varint.Int64.Size(msg.Timestamp) +
		ord.String.Size(string(msg.Role)) +
		ord.String.Size(msg.Content) +
		stringsSize(msg.DocumentIDs) +
		ord.String.Size(msg.ThumbRating) +
		ord.String.Size(msg.FeedbackText)

	w := &writer{bs: make([]byte, size)}
	w.string(msg.SessionID)
	w.n += varint.Int64.Marshal(msg.Timestamp, w.bs[w.n:])
	w.string(string(msg.Role))
	w.string(msg.Content)
	w.strings(msg.DocumentIDs)
	w.string(msg.ThumbRating)
	w.string(msg.FeedbackText)
	return w.bs
}

// UnmarshalMessage deserializes a ConversationMessage from bytes.
func UnmarshalMessage(data []byte) (*core.ConversationMessage, error) {
	r := &reader{bs: data}
	msg := &core.ConversationMessage{}
	msg.SessionID = r.string()
	msg.Timestamp = r.int64()
	msg.Role = core.Role(r.string())
	msg.Content = r.string()
	msg.DocumentIDs = r.strings()
	msg.ThumbRating = r.string()
	msg.FeedbackText = r.string()
	if r.err != nil {
		return nil, fmt.Errorf("%w: message: %w", ErrSerializationFailed, r.err)
	}
	return msg, nil
}

// MarshalPassage serializes a Passage to bytes.
func MarshalPassage(p *Passage) []byte {
	md := &p.Metadata
	size := ord.String.Size(p.ID) +
		ord.String.Size(p.Text) +
		ord.String.Size(string(p.Type)) +
		ord.String.Size(md.DocID) +
		ord.String.Size(md.VideoID) +
		ord.String.Size(md.PodcastID) +
		ord.String.Size(md.SourceURL) +
		ord.Bool.Size(md.MemberContent) +
		varint.Uint64.Size(math.Float64bits(md.StartTime)) +
		varint.Int.Size(md.PageNumber) +
		ord.String.Size(md.ParentFolderName) +
		ord.String.Size(md.ParentFolderURL) +
		vectorSize(p.Vector)

	w := &writer{bs: make([]byte, size)}
	w.string(p.ID)
	w.string(p.Text)
	w.string(string(p.Type))
	w.string(md.DocID)
	w.string(md.VideoID)
	w.string(md.PodcastID)
	w.string(md.SourceURL)
	w.n += ord.Bool.Marshal(md.MemberContent, w.bs[w.n:])
	w.n += varint.Uint64.Marshal(math.Float64bits(md.StartTime), w.bs[w.n:])
	w.n += varint.Int.Marshal(md.PageNumber, w.bs[w.n:])
	w.string(md.ParentFolderName)
	w.string(md.ParentFolderURL)
	w.vector(p.Vector)
	return w.bs
}

// UnmarshalPassage deserializes a Passage from bytes.
func UnmarshalPassage(data []byte) (*Passage, error) {
	r := &reader{bs: data}
	p := &Passage{}
	p.ID = r.string()
	p.Text = r.string()
	p.Type = core.DocType(r.string())
	p.Metadata.DocID = r.string()
	p.Metadata.VideoID = r.string()
	p.Metadata.PodcastID = r.string()
	p.Metadata.SourceURL = r.string()
	p.Metadata.MemberContent = r.bool()
	p.Metadata.StartTime = math.Float64frombits(r.uint64())
	p.Metadata.PageNumber = r.int()
	p.Metadata.ParentFolderName = r.string()
	p.Metadata.ParentFolderURL = r.string()
	p.Vector = r.vector()
	if r.err != nil {
		return nil, fmt.Errorf("%w: passage: %w", ErrSerializationFailed, r.err)
	}
	return p, nil
}

func stringsSize(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

func vectorSize(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

type writer struct {
	bs []byte
	n  int
}

func (w *writer) string(s string) {
	w.n += ord.String.Marshal(s, w.bs[w.n:])
}

func (w *writer) strings(ss []string) {
	w.n += varint.Int.Marshal(len(ss), w.bs[w.n:])
	for _, s := range ss {
		w.string(s)
	}
}

func (w *writer) vector(v []float32) {
	w.n += varint.Int.Marshal(len(v), w.bs[w.n:])
	for _, f := range v {
		w.n += varint.Uint32.Marshal(math.Float32bits(f), w.bs[w.n:])
	}
}

// reader decodes sequentially and latches the first error; later reads are no-ops.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) bool() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) length() int {
	l := r.int()
	if r.err == nil && (l < 0 || l > len(r.bs)-r.n) {
		r.err = ErrTruncatedData
		return 0
	}
	return l
}

func (r *reader) strings() []string {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	ss := make([]string, 0, l)
	for i := 0; i < l && r.err == nil; i++ {
		ss = append(ss, r.string())
	}
	return ss
}

func (r *reader) vector() []float32 {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	v := make([]float32, 0, l)
	for i := 0; i < l && r.err == nil; i++ {
		bits, n, err := varint.Uint32.Unmarshal(r.bs[r.n:])
		r.n += n
		r.err = err
		v = append(v, math.Float32frombits(bits))
	}
	return v
}
