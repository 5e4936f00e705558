package action

import "encoding/json"

// Result strings recorded in an outcome.
const (
	ResultSuccess       = "success"
	ResultUnknownAction = "unknown action"
)

// Outcome is the decision as received plus a "result" entry.
type Outcome map[string]interface{}

// newOutcome copies fields and sets result.
func newOutcome(fields map[string]interface{}, result string) Outcome {
	o := make(Outcome, len(fields)+1)
	for k, v := range fields {
		o[k] = v
	}
	o["result"] = result
	return o
}

// Result is the recorded result, "success" or a failure reason.
func (o Outcome) Result() string {
	s, _ := o["result"].(string)
	return s
}

// Action is the recorded action name, empty when the reply had none.
func (o Outcome) Action() string {
	s, _ := o["action"].(string)
	return s
}

// JSON encodes the outcome with sorted keys.
func (o Outcome) JSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(o))
}

// String is the JSON form, or "{}" if it cannot be encoded.
func (o Outcome) String() string {
	data, err := o.JSON()
	if err != nil {
		return "{}"
	}
	return string(data)
}
