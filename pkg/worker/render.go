package worker

import (
	"fmt"
	"strings"

	"github.com/aretw0/automate/pkg/domain"
)

const codeFence = "```"

// RenderStep converts an agent step into the text of one system message.
//
// An intermediate step renders its first (action, observation) pair as
// "<tool> \n<observation>". Otherwise the final output is used. Code fences are
// removed from the result.
func RenderStep(step domain.Step) string {
	var text string
	switch {
	case step.IsFinal():
		text = step.Output
	case len(step.IntermediateSteps) > 0:
		first := step.IntermediateSteps[0]
		text = fmt.Sprintf("%s \n%v", first.Action.Tool, observationText(first.Observation))
	}
	return strings.ReplaceAll(text, codeFence, "")
}

func observationText(obs any) string {
	if obs == nil {
		return ""
	}
	return fmt.Sprint(obs)
}
