package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/tanpawarit/restaurant-assistant/pkg/metrics"
)

// ValidationError lists every schema violation found in a set of arguments.
type ValidationError struct {
	Tool   string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Issues, "; "))
}

// Catalog is the fixed set of tools. It is safe for concurrent use.
type Catalog struct {
	tools map[string]*Tool
	names []string
}

func NewCatalog(deps Deps) (*Catalog, error) {
	if deps.Store == nil {
		return nil, errors.New("tool catalog requires a store")
	}
	if deps.Knowledge == nil {
		return nil, errors.New("tool catalog requires a knowledge base")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	h := &handlers{deps: deps}
	c := &Catalog{tools: map[string]*Tool{}}
	for _, t := range h.tools() {
		if err := c.register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) register(t *Tool) error {
	if _, dup := c.tools[t.Name]; dup {
		return fmt.Errorf("tool %s registered twice", t.Name)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.Schema))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", t.Name, err)
	}
	t.compiled = compiled
	c.tools[t.Name] = t
	c.names = append(c.names, t.Name)
	sort.Strings(c.names)
	return nil
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.tools[name]
	return ok
}

func (c *Catalog) Get(name string) (*Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Infos returns the model-facing descriptions of the named tools, in the
// order given. Unknown names are skipped.
func (c *Catalog) Infos(names ...string) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		t, ok := c.tools[name]
		if !ok {
			continue
		}
		out = append(out, &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(paramsFromSchema(t.Schema)),
		})
	}
	return out
}

// Validate checks raw JSON arguments against the tool's schema.
func (c *Catalog) Validate(name string, rawArgs string) error {
	t, ok := c.tools[name]
	if !ok {
		return &ValidationError{Tool: name, Issues: []string{"unknown tool"}}
	}
	raw := strings.TrimSpace(rawArgs)
	if raw == "" {
		raw = "{}"
	}
	if !json.Valid([]byte(raw)) {
		return &ValidationError{Tool: name, Issues: []string{"arguments are not valid JSON"}}
	}

	res, err := t.compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return &ValidationError{Tool: name, Issues: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	issues := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		issues = append(issues, e.String())
	}
	return &ValidationError{Tool: name, Issues: issues}
}

// Invoke validates and runs a tool and collapses the outcome to text.
func (c *Catalog) Invoke(ctx context.Context, name string, rawArgs string) (res Result) {
	start := time.Now()
	res = Result{Tool: name}
	defer func() {
		metrics.ToolCallsTotal.WithLabelValues(name, string(res.Kind)).Inc()
		metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	t, ok := c.tools[name]
	if !ok {
		res.Kind = OutcomeInvalid
		res.Text = fmt.Sprintf("There is no tool called %q.", name)
		return res
	}
	if err := c.Validate(name, rawArgs); err != nil {
		res.Kind = OutcomeInvalid
		res.Text = "The request was incomplete: " + err.Error()
		return res
	}
	raw := strings.TrimSpace(rawArgs)
	if raw == "" {
		raw = "{}"
	}

	out := t.run(ctx, json.RawMessage(raw))
	res.Kind = out.Kind
	res.Text = out.Text
	if out.Kind == OutcomeBackendError {
		log.Error().Err(out.Err).Str("tool", name).Str("args", raw).Msg("tool backend failure")
		res.Text = t.Apology
	}
	log.Debug().Str("tool", name).Str("outcome", string(res.Kind)).Dur("took", time.Since(start)).Msg("tool invoked")
	return res
}

func (t *Tool) run(ctx context.Context, args json.RawMessage) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = backend(fmt.Errorf("panic in %s: %v", t.Name, r))
		}
	}()
	out = t.handler(ctx, args)
	if out.Kind == OutcomeBackendError && out.Err == nil {
		out.Err = errors.New("unspecified backend error")
	}
	return out
}

// paramsFromSchema converts the properties of an object schema into eino
// parameter descriptions.
func paramsFromSchema(s map[string]any) map[string]*schema.ParameterInfo {
	props, _ := s["properties"].(map[string]any)
	if len(props) == 0 {
		return map[string]*schema.ParameterInfo{}
	}
	required := map[string]bool{}
	for _, r := range stringList(s["required"]) {
		required[r] = true
	}

	out := make(map[string]*schema.ParameterInfo, len(props))
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		info := paramFromSchema(prop)
		info.Required = required[name]
		out[name] = info
	}
	return out
}

func paramFromSchema(s map[string]any) *schema.ParameterInfo {
	info := &schema.ParameterInfo{}
	info.Desc, _ = s["description"].(string)
	info.Enum = stringList(s["enum"])

	switch s["type"] {
	case "integer":
		info.Type = schema.Integer
	case "number":
		info.Type = schema.Number
	case "boolean":
		info.Type = schema.Boolean
	case "array":
		info.Type = schema.Array
		if items, ok := s["items"].(map[string]any); ok {
			info.ElemInfo = paramFromSchema(items)
		}
	case "object":
		info.Type = schema.Object
		info.SubParams = paramsFromSchema(s)
	default:
		info.Type = schema.String
	}
	return info
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, x := range list {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
