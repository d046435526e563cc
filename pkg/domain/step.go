package domain

// AgentAction describes the tool the agent decided to invoke.
type AgentAction struct {
	Tool      string `json:"tool" yaml:"tool"`
	ToolInput any    `json:"tool_input,omitempty" yaml:"tool_input,omitempty"`
	Log       string `json:"log,omitempty" yaml:"log,omitempty"`
}

// IntermediateStep pairs an agent action with the value it produced.
type IntermediateStep struct {
	Action      AgentAction `json:"action" yaml:"action"`
	Observation any         `json:"observation,omitempty" yaml:"observation,omitempty"`
}

// Step is a single item of an agent run.
// A step carries either intermediate steps or a final output; an empty step is valid
// and renders as an empty message.
type Step struct {
	IntermediateSteps []IntermediateStep `json:"intermediate_steps,omitempty" yaml:"intermediate_steps,omitempty"`
	Output            string             `json:"output,omitempty" yaml:"output,omitempty"`
}

// IsFinal reports whether the step carries the agent's final answer.
func (s Step) IsFinal() bool {
	return len(s.IntermediateSteps) == 0 && s.Output != ""
}
