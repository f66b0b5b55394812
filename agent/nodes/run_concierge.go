package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
)

func RunConcierge(ctx context.Context, in *GraphState, concierge contractx.Concierge) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	out, err := concierge.Run(ctx, contractx.ConciergeRequest{
		Guest:    in.Guest,
		Messages: in.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("run concierge: %w", err)
	}

	in.Outcome = out
	in.Reply = strings.TrimSpace(out.Reply)
	if in.Reply == "" {
		return nil, fmt.Errorf("%w: concierge returned empty reply", contractx.ErrSchemaViolation)
	}
	return in, nil
}
