package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/luna-hotel-concierge/agent/nodes"
)

const (
	nodeValidateRequest = "validate_request"
	nodeClaimDelivery   = "claim_delivery"
	nodeResolveGuest    = "resolve_guest"
	nodeRecordInbound   = "record_inbound"
	nodeBuildContext    = "build_context"
	nodeRunConcierge    = "run_concierge"
	nodeRecordOutbound  = "record_outbound"
	nodeFinalizeReply   = "finalize_reply"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodeClaimDelivery,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ClaimDelivery(ctx, in, o.dedupe)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeClaimDelivery, err)
	}

	if err := graph.AddLambdaNode(nodeResolveGuest,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ResolveGuest(ctx, in, o.identity)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeResolveGuest, err)
	}

	if err := graph.AddLambdaNode(nodeRecordInbound,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordInbound(ctx, in, o.messages)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeRecordInbound, err)
	}

	if err := graph.AddLambdaNode(nodeBuildContext,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildContext(ctx, in, o.configs, o.messages, o.builder, o.historyLimit)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeBuildContext, err)
	}

	if err := graph.AddLambdaNode(nodeRunConcierge,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunConcierge(ctx, in, o.concierge)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeRunConcierge, err)
	}

	if err := graph.AddLambdaNode(nodeRecordOutbound,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordOutbound(ctx, in, o.messages)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeRecordOutbound, err)
	}

	if err := graph.AddLambdaNode(nodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}

	duplicateBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", nodex.ErrNilState
			}
			if in.Duplicate {
				return nodeFinalizeReply, nil
			}
			return nodeResolveGuest, nil
		},
		map[string]bool{
			nodeFinalizeReply: true,
			nodeResolveGuest:  true,
		},
	)
	if err := graph.AddBranch(nodeClaimDelivery, duplicateBranch); err != nil {
		return nil, fmt.Errorf("add duplicate delivery branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeValidateRequest, nodeClaimDelivery},
		{nodeResolveGuest, nodeRecordInbound},
		{nodeRecordInbound, nodeBuildContext},
		{nodeBuildContext, nodeRunConcierge},
		{nodeRunConcierge, nodeRecordOutbound},
		{nodeRecordOutbound, nodeFinalizeReply},
		{nodeFinalizeReply, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
