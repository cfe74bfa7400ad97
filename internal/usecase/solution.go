package usecase

import "strings"

// maxUpstreamErrorLen caps how much of an upstream error message is echoed
// back to the caller inside the markup wrapper.
const maxUpstreamErrorLen = 50

const genericUpstreamError = "Unknown error from upstream model"

// errorSolution wraps an upstream error message in LaTeX text markup so the
// caller's renderer can display it in place of a solution.
func errorSolution(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = genericUpstreamError
	}
	if len(msg) > maxUpstreamErrorLen {
		msg = msg[:maxUpstreamErrorLen]
	}
	return `\text{Error: ` + msg + `}`
}
