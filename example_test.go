package hearth_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/pkg/actions"
	"github.com/aretw0/hearth/pkg/adapters/memory"
	"github.com/aretw0/hearth/pkg/dispatch"
)

// ExampleNew wires the built-in forms to an in-memory broker whose "lights"
// channel acknowledges every request.
func ExampleNew() {
	broker := memory.NewBroker()
	broker.Handle("lights", func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte(`{"ok":true}`), nil
	})

	reg, err := hearth.NewRegistry(nil, actions.NewHandlers(actions.Deps{
		Dispatcher: dispatch.New(broker),
	}))
	if err != nil {
		log.Fatal(err)
	}
	assistant := hearth.New(reg)

	ctx := context.Background()
	for _, text := range []string{"lights dim", "40", "lights off"} {
		reply, err := assistant.Say(ctx, "kitchen", text)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %s\n", reply.Outcome, reply.Message)
	}

	// Output:
	// clarify: What brightness level?
	// done: Brightness set to 40.
	// done: Lights off.
}
