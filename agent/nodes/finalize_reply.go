package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNilState
	}
	if in.Duplicate {
		return GraphOutput{Duplicate: true}, nil
	}
	if in.Reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: reply is empty", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply:    in.Reply,
		GuestID:  in.Guest.ID,
		Fallback: in.Outcome.Fallback,
	}, nil
}
