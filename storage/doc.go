// Package storage declares where ragchat keeps state between requests.
//
// A ConversationRepository holds each session's messages keyed by
// (session id, millisecond timestamp), with feedback recorded against an
// existing message. A PassageIndex answers lexical and vector queries over
// ingested passages. The badger package implements both on an embedded
// BadgerDB; the postgres package implements the index on pgvector.
//
// Messages are encoded with hand-written mus codecs (serialization.go). Every method
// takes a context and implementations are safe for concurrent use.
package storage
