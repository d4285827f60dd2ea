// Package dispatch drives one conversation turn across agents, tools and
// handoffs.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tanpawarit/restaurant-assistant/agent/agents/roster"
	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	toolx "github.com/tanpawarit/restaurant-assistant/agent/tool"
	"github.com/tanpawarit/restaurant-assistant/pkg/metrics"
)

type Config struct {
	MaxIterations int           `envconfig:"MAX_ITERATIONS" split_words:"true" default:"10"`
	ToolTimeout   time.Duration `envconfig:"TOOL_TIMEOUT" split_words:"true" default:"10s"`
}

var DefaultConfig = Config{MaxIterations: 10, ToolTimeout: 10 * time.Second}

// Agents resolves an agent kind to its runnable agent.
type Agents interface {
	Agent(kind contractx.AgentKind) (*roster.Agent, error)
}

// Tools is the part of the tool catalog the loop calls.
type Tools interface {
	Validate(name string, rawArgs string) error
	Invoke(ctx context.Context, name string, rawArgs string) toolx.Result
}

type Result struct {
	Text       string
	History    []*schema.Message
	Agent      contractx.AgentKind
	Iterations int
}

// Loop is safe for concurrent use; every turn works on its own copy of the
// history.
type Loop struct {
	agents Agents
	tools  Tools
	cfg    Config
	tracer trace.Tracer
}

func New(agents Agents, tools Tools, cfg Config) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig.MaxIterations
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = DefaultConfig.ToolTimeout
	}
	return &Loop{
		agents: agents,
		tools:  tools,
		cfg:    cfg,
		tracer: otel.Tracer("restaurant-assistant/dispatch"),
	}
}

// RunTurn appends userText to history and lets agents answer it, starting at
// start (Triage when empty). Tool calls run in order; a handoff switches the
// agent without consuming new input. The returned history includes every
// message produced during the turn.
func (l *Loop) RunTurn(ctx context.Context, history []*schema.Message, userText string, start contractx.AgentKind) (res Result, err error) {
	if start == "" {
		start = contractx.AgentTriage
	}
	begin := time.Now()

	ctx, span := l.tracer.Start(ctx, "dispatch.run_turn",
		trace.WithAttributes(attribute.String("agent.start", string(start))),
	)
	defer func() {
		outcome := "answered"
		if err != nil {
			outcome = string(contractx.FailureKindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(
			attribute.String("agent.end", string(res.Agent)),
			attribute.Int("iterations", res.Iterations),
		)
		span.End()
		metrics.TurnsTotal.WithLabelValues(outcome).Inc()
		metrics.TurnDuration.WithLabelValues(string(start)).Observe(time.Since(begin).Seconds())
		if err == nil {
			metrics.TurnIterations.Observe(float64(res.Iterations))
		}
	}()

	agent, err := l.agents.Agent(start)
	if err != nil {
		return Result{Agent: start}, err
	}

	msgs := make([]*schema.Message, 0, len(history)+4)
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(userText))

	for iter := 1; iter <= l.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{Agent: agent.Kind, Iterations: iter - 1}, err
		}

		reply, err := agent.Invoke(ctx, msgs)
		if err != nil {
			return Result{Agent: agent.Kind, Iterations: iter}, err
		}
		if reply == nil {
			return Result{Agent: agent.Kind, Iterations: iter}, fmt.Errorf("%w: agent=%s returned no message", contractx.ErrEmptyReply, agent.Kind)
		}
		if reply.Role == "" {
			reply.Role = schema.Assistant
		}

		if len(reply.ToolCalls) == 0 {
			text := strings.TrimSpace(reply.Content)
			if text == "" {
				return Result{Agent: agent.Kind, Iterations: iter}, fmt.Errorf("%w: agent=%s", contractx.ErrEmptyReply, agent.Kind)
			}
			msgs = append(msgs, reply)
			return Result{Text: text, History: msgs, Agent: agent.Kind, Iterations: iter}, nil
		}

		msgs = append(msgs, reply)
		next, appended, err := l.handleCalls(ctx, agent, reply.ToolCalls)
		msgs = append(msgs, appended...)
		if err != nil {
			return Result{Agent: agent.Kind, Iterations: iter}, err
		}

		if next != "" {
			target, err := l.agents.Agent(next)
			if err != nil {
				return Result{Agent: agent.Kind, Iterations: iter}, err
			}
			log.Debug().Str("from", string(agent.Kind)).Str("to", string(next)).Int("iteration", iter).Msg("agent handoff")
			span.AddEvent("handoff", trace.WithAttributes(
				attribute.String("from", string(agent.Kind)),
				attribute.String("to", string(next)),
			))
			metrics.HandoffsTotal.WithLabelValues(string(agent.Kind), string(next)).Inc()
			agent = target
		}
	}

	return Result{Agent: agent.Kind, Iterations: l.cfg.MaxIterations},
		fmt.Errorf("%w: %d model invocations without a final answer", contractx.ErrIterationLimit, l.cfg.MaxIterations)
}

// handleCalls processes one reply's tool calls in order and returns the
// handoff target, if any, and the tool messages to append. Only the first
// handoff is honoured.
func (l *Loop) handleCalls(ctx context.Context, agent *roster.Agent, calls []schema.ToolCall) (contractx.AgentKind, []*schema.Message, error) {
	var (
		next contractx.AgentKind
		out  []*schema.Message
	)
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)

		if target, ok := roster.ParseHandoff(name); ok {
			if !target.Valid() {
				return "", out, fmt.Errorf("%w: agent=%s requested %q", contractx.ErrUnknownAgent, agent.Kind, target)
			}
			if !agent.CanHandoff(target) {
				return "", out, fmt.Errorf("%w: %s -> %s", contractx.ErrHandoffNotAllowed, agent.Kind, target)
			}
			if next != "" {
				out = append(out, schema.ToolMessage(
					fmt.Sprintf("Transfer to %s ignored: the conversation was already transferred to %s.", target, next),
					call.ID,
				))
				continue
			}
			next = target
			out = append(out, schema.ToolMessage(transferText(target), call.ID))
			continue
		}

		if !agent.CanUseTool(name) {
			return "", out, fmt.Errorf("%w: agent=%s tool=%s", contractx.ErrToolNotPermitted, agent.Kind, name)
		}

		if err := l.tools.Validate(name, call.Function.Arguments); err != nil {
			log.Debug().Err(err).Str("agent", string(agent.Kind)).Str("tool", name).Msg("tool arguments rejected")
			out = append(out, schema.ToolMessage(failureText(name, err), call.ID))
			continue
		}

		res, err := l.invokeWithTimeout(ctx, agent.Kind, name, call.Function.Arguments)
		if err != nil {
			return "", out, err
		}
		out = append(out, schema.ToolMessage(res.Text, call.ID))
	}
	return next, out, nil
}

func (l *Loop) invokeWithTimeout(ctx context.Context, agent contractx.AgentKind, name, args string) (toolx.Result, error) {
	ctx, span := l.tracer.Start(ctx, "dispatch.tool",
		trace.WithAttributes(
			attribute.String("agent", string(agent)),
			attribute.String("tool.name", name),
		),
	)
	defer span.End()

	tctx, cancel := context.WithTimeout(ctx, l.cfg.ToolTimeout)
	defer cancel()

	done := make(chan toolx.Result, 1)
	go func() {
		done <- l.tools.Invoke(tctx, name, args)
	}()

	select {
	case res := <-done:
		span.SetAttributes(attribute.String("tool.outcome", string(res.Kind)))
		log.Debug().Str("agent", string(agent)).Str("tool", name).Str("outcome", string(res.Kind)).Msg("tool call finished")
		return res, nil
	case <-tctx.Done():
		if ctx.Err() != nil {
			return toolx.Result{}, ctx.Err()
		}
		span.SetStatus(codes.Error, "timeout")
		return toolx.Result{}, fmt.Errorf("%w: tool=%s after %s", contractx.ErrToolTimeout, name, l.cfg.ToolTimeout)
	}
}

func transferText(target contractx.AgentKind) string {
	b, _ := json.Marshal(map[string]string{"assistant": string(target)})
	return string(b)
}

func failureText(name string, err error) string {
	f := contractx.ToolFailure{Tool: name, Error: contractx.ErrInvalidArguments.Error()}
	var verr *toolx.ValidationError
	if errors.As(err, &verr) {
		f.Detail = verr.Issues
	} else {
		f.Detail = []string{err.Error()}
	}
	b, _ := json.Marshal(f)
	return string(b)
}
