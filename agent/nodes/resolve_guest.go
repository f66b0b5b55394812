package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
)

func ResolveGuest(ctx context.Context, in *GraphState, resolver contractx.GuestResolver) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	guest, err := resolver.Resolve(ctx, in.From)
	if err != nil {
		return nil, fmt.Errorf("resolve guest: %w", err)
	}
	in.Guest = guest
	return in, nil
}
