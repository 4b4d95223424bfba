/*
Package domain contains the core domain models of the Hearth command interpreter.

It defines the vocabulary shared by every stage of the pipeline
(match → slot-fill/disambiguate → dispatch) and is kept free of I/O and
persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Token: A typed atomic unit extracted from an utterance (e.g. a country name).
  - Slot: A named, typed parameter an Action requires or optionally accepts.
  - Action: A registered command with trigger keywords and slot declarations.
  - Form: A vocabulary-scoped group of Actions sharing global keywords and a worker channel.
  - DispatchRequest: The wire payload sent to a worker through the broker.
  - Conversation: The persisted, resumable state of a session (Matching → AwaitingSlot → Resolved → Dispatching → Done/Failed).
*/
package domain
