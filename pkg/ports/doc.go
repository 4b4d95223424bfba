/*
Package ports defines the driven ports (interfaces) of the Hearth interpreter.

These interfaces decouple the pipeline from external implementations, so the
same engine runs against Redis in production and in-memory adapters in tests.

# Key Interfaces

  - Broker: Request/response over a message queue with correlated replies.
  - FileLister: Enumerates candidate resource files for disambiguation.
  - ConfigStore: Read-only, dotted-key access to configuration.
  - StateStore: Persists per-session Conversation state.
  - DistributedLocker: Serializes concurrent turns of the same session.
*/
package ports
