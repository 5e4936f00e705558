// Package action turns a model decision into a device interaction.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/mj1618/ai-testing-tool/internal/model"
)

// Kind is the action a decision asks for.
type Kind string

const (
	KindTap    Kind = "tap"
	KindInput  Kind = "input"
	KindSwipe  Kind = "swipe"
	KindWait   Kind = "wait"
	KindError  Kind = "error"
	KindFinish Kind = "finish"
)

var (
	// ErrMalformed means the reply is not a JSON object.
	ErrMalformed = errors.New("malformed action")
	// ErrSchema means the reply is an object that is not a valid action.
	ErrSchema = errors.New("invalid action")
)

// Request is a decoded decision. Fields holds every key of the reply,
// including ones the executor does not use.
type Request struct {
	Action      Kind   `mapstructure:"action"`
	Bounds      string `mapstructure:"bounds"`
	XPath       string `mapstructure:"xpath"`
	Value       string `mapstructure:"value"`
	SwipeStartX int    `mapstructure:"swipe_start_x"`
	SwipeStartY int    `mapstructure:"swipe_start_y"`
	SwipeEndX   int    `mapstructure:"swipe_end_x"`
	SwipeEndY   int    `mapstructure:"swipe_end_y"`
	Duration    int    `mapstructure:"duration"` // ms
	Timeout     int    `mapstructure:"timeout"`  // ms

	Fields map[string]interface{} `mapstructure:"-"`
}

// Parse decodes a model reply. A reply wrapped in a markdown code fence is
// unwrapped first. When the reply is an object but not a valid action the
// returned Request still carries Fields.
func Parse(raw string) (Request, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(stripFence(raw)), &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fields == nil {
		return Request{}, fmt.Errorf("%w: null", ErrMalformed)
	}

	req := Request{Fields: fields}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return req, err
	}
	if err := decoder.Decode(fields); err != nil {
		return req, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	req.Fields = fields
	return req, req.validate()
}

func (r Request) has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

func (r Request) validate() error {
	switch r.Action {
	case KindTap:
		return r.validateTarget()
	case KindInput:
		if err := r.validateTarget(); err != nil {
			return err
		}
		if !r.has("value") {
			return fmt.Errorf("%w: input needs value", ErrSchema)
		}
	case KindSwipe:
		for _, key := range []string{"swipe_start_x", "swipe_start_y", "swipe_end_x", "swipe_end_y", "duration"} {
			if !r.has(key) {
				return fmt.Errorf("%w: swipe needs %s", ErrSchema, key)
			}
		}
		if r.Duration < 0 {
			return fmt.Errorf("%w: negative duration", ErrSchema)
		}
	case KindWait:
		if !r.has("timeout") {
			return fmt.Errorf("%w: wait needs timeout", ErrSchema)
		}
		if r.Timeout < 0 {
			return fmt.Errorf("%w: negative timeout", ErrSchema)
		}
	case KindError, KindFinish:
	case "":
		return fmt.Errorf("%w: missing action", ErrSchema)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrSchema, r.Action)
	}
	return nil
}

func (r Request) validateTarget() error {
	switch {
	case r.Bounds != "":
		if _, err := model.ParseBounds(r.Bounds); err != nil {
			return fmt.Errorf("%w: %v", ErrSchema, err)
		}
	case r.XPath != "":
	default:
		return fmt.Errorf("%w: %s needs bounds or xpath", ErrSchema, r.Action)
	}
	return nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
