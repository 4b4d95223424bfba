/*
Package hearth interprets short home-automation commands ("vpn start france
paris", "lights dim 40") and forwards them to device workers over a message
queue.

Each utterance goes through three stages:

  - Matching: the form whose global keyword appears in the utterance, and
    within it the action with the most keyword hits.
  - Resolution: the action's slots are bound to typed tokens in declaration
    order. A missing required slot halts the pipeline with a clarifying
    question; the next utterance in the same session can answer it.
  - Dispatch: the action's handler builds a {"name", "props"} request and
    sends it to the form's worker channel. A recoverable failure triggers a
    credential refresh and exactly one retry.

Conversations are persisted per session ID through a ports.StateStore, so a
question asked on one replica can be answered on another.

# Usage

	reg, err := hearth.NewRegistry(hearth.DefaultForms(), actions.NewHandlers(actions.Deps{
		Dispatcher: dispatch.New(broker),
		Files:      file.NewLister(),
		Config:     cfg.Store(),
	}))
	if err != nil {
		log.Fatal(err)
	}

	assistant := hearth.New(reg)
	reply, err := assistant.Say(ctx, "kitchen", "vpn start")
	// reply.Outcome == domain.OutcomeClarify, reply.Question == "Which country?"
	reply, err = assistant.Say(ctx, "kitchen", "france")
*/
package hearth
