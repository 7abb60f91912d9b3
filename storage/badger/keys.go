package badger

import (
	"encoding/binary"
	"math"
)

// Key prefixes for different data types
const (
	conversationPrefix = "convmsg:"
	passagePrefix      = "psgrec:"
)

// makeSessionPrefix generates the prefix shared by every message of a session.
// Format: prefix:len(session):session
// The session id is length-prefixed so one id can never be a prefix of another.
// Callers validate ids against core.MaxSessionIDLength, well inside uint16.
func makeSessionPrefix(sessionID string) []byte {
	buf := make([]byte, len(conversationPrefix)+2+len(sessionID))
	offset := copy(buf, conversationPrefix)
	binary.BigEndian.PutUint16(buf[offset:], uint16(len(sessionID)))
	offset += 2
	copy(buf[offset:], sessionID)
	return buf
}

// makeMessageKey generates a composite key for a conversation message.
// Format: sessionPrefix:timestamp
func makeMessageKey(sessionID string, timestamp int64) []byte {
	prefix := makeSessionPrefix(sessionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp))
	return buf
}

// makeSessionEndKey generates a key that sorts after every message of the session.
func makeSessionEndKey(sessionID string) []byte {
	return makeMessageKey(sessionID, math.MaxInt64)
}

// messageTimestamp extracts the timestamp from a message key.
func messageTimestamp(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makePassageKey generates a key for an indexed passage.
func makePassageKey(id string) []byte {
	return []byte(passagePrefix + id)
}
