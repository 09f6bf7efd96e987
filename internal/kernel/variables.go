package kernel

// InputKey is the distinguished variable carried from one step's output
// to the next step's input.
const InputKey = "input"

// Variables is the key-value bag threaded between plan steps.
type Variables map[string]string

func NewVariables(input string) Variables {
	v := Variables{}
	if input != "" {
		v[InputKey] = input
	}
	return v
}

// Input returns the current value of the distinguished input variable.
func (v Variables) Input() string {
	return v[InputKey]
}

// WithInput returns a copy of the variables with the input value replaced.
// The receiver is never mutated; each plan step owns its own copy.
func (v Variables) WithInput(input string) Variables {
	return v.With(InputKey, input)
}

// With returns a copy of the variables with one key set.
func (v Variables) With(key, value string) Variables {
	out := make(Variables, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[key] = value
	return out
}

func (v Variables) Get(key string) string {
	return v[key]
}
