/*
Package session implements session management and persistence orchestration.

A session is one ongoing conversation with the assistant. The Manager serializes
access per session ID, so a follow-up answer to a clarifying question never races
the utterance that asked it, and optionally takes a distributed lock so several
replicas can share a Redis-backed store.
*/
package session
