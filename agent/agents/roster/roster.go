// Package roster builds the fixed set of conversational agents and the model
// runners behind them.
package roster

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	promptx "github.com/tanpawarit/restaurant-assistant/agent/prompt"
)

// ToolSet is the part of the tool catalog the roster needs.
type ToolSet interface {
	Has(name string) bool
	Infos(names ...string) []*schema.ToolInfo
}

// ModelFactory returns the chat model an agent runs on.
type ModelFactory func(ctx context.Context, kind contractx.AgentKind) (einomodel.ToolCallingChatModel, error)

// Agent is immutable once built.
type Agent struct {
	Definition
	Instructions string

	tools    map[string]struct{}
	handoffs map[contractx.AgentKind]struct{}
	runner   compose.Runnable[[]*schema.Message, *schema.Message]
}

func (a *Agent) CanUseTool(name string) bool {
	_, ok := a.tools[name]
	return ok
}

func (a *Agent) CanHandoff(to contractx.AgentKind) bool {
	_, ok := a.handoffs[to]
	return ok
}

// Invoke runs the agent's model over the conversation. The agent's
// instructions are prepended as the system message.
func (a *Agent) Invoke(ctx context.Context, history []*schema.Message) (*schema.Message, error) {
	msg, err := a.runner.Invoke(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, a.Kind, err)
	}
	return msg, nil
}

type Roster struct {
	agents map[contractx.AgentKind]*Agent
}

func (r *Roster) Agent(kind contractx.AgentKind) (*Agent, error) {
	a, ok := r.agents[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, kind)
	}
	return a, nil
}

// New validates the definitions against the tool set and compiles one model
// runner per agent.
func New(ctx context.Context, defs []Definition, tools ToolSet, prompts promptx.PromptSet, models ModelFactory) (*Roster, error) {
	if err := Validate(defs); err != nil {
		return nil, err
	}
	byKind := make(map[contractx.AgentKind]Definition, len(defs))
	for _, d := range defs {
		byKind[d.Kind] = d
	}

	r := &Roster{agents: make(map[contractx.AgentKind]*Agent, len(defs))}
	for _, d := range defs {
		for _, name := range d.Tools {
			if !tools.Has(name) {
				return nil, fmt.Errorf("%w: %s (agent=%s)", contractx.ErrUnknownTool, name, d.Kind)
			}
		}
		instructions, err := prompts.Instructions(d.Kind)
		if err != nil {
			return nil, err
		}
		chatModel, err := models(ctx, d.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent=%s: %v", contractx.ErrModelInvoke, d.Kind, err)
		}

		infos := tools.Infos(d.Tools...)
		for _, target := range d.Handoffs {
			infos = append(infos, handoffInfo(byKind[target]))
		}
		toolModel, err := chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, d.Kind, err)
		}
		runner, err := compileAgentGraph(ctx, d.Kind, toolModel, instructions)
		if err != nil {
			return nil, err
		}

		a := &Agent{
			Definition:   d,
			Instructions: instructions,
			tools:        make(map[string]struct{}, len(d.Tools)),
			handoffs:     make(map[contractx.AgentKind]struct{}, len(d.Handoffs)),
			runner:       runner,
		}
		for _, name := range d.Tools {
			a.tools[name] = struct{}{}
		}
		for _, target := range d.Handoffs {
			a.handoffs[target] = struct{}{}
		}
		r.agents[d.Kind] = a
	}
	return r, nil
}

func handoffInfo(target Definition) *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        HandoffToolName(target.Kind),
		Desc:        fmt.Sprintf("Handoff to the %s agent to handle the request. %s", target.Name, target.HandoffDescription),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}
}

func compileAgentGraph(
	ctx context.Context,
	kind contractx.AgentKind,
	chatModel einomodel.BaseChatModel,
	instructions string,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()

	if err := graph.AddLambdaNode("instructions",
		compose.InvokableLambda(func(ctx context.Context, history []*schema.Message) ([]*schema.Message, error) {
			msgs := make([]*schema.Message, 0, len(history)+1)
			msgs = append(msgs, schema.SystemMessage(instructions))
			return append(msgs, history...), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add %s instructions node: %w", kind, err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add %s model node: %w", kind, err)
	}
	if err := graph.AddEdge(compose.START, "instructions"); err != nil {
		return nil, fmt.Errorf("add %s edge start->instructions: %w", kind, err)
	}
	if err := graph.AddEdge("instructions", "model"); err != nil {
		return nil, fmt.Errorf("add %s edge instructions->model: %w", kind, err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add %s edge model->end: %w", kind, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("roster."+string(kind)))
	if err != nil {
		return nil, fmt.Errorf("compile %s agent graph: %w", kind, err)
	}
	return runner, nil
}
