package poller

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"github.com/neotask/neotask/internal/domain"
)

var (
	neoLabel      = color.New(color.FgCyan, color.Bold).SprintFunc()
	youLabel      = color.New(color.FgGreen, color.Bold).SprintFunc()
	approvalLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	otherLabel    = color.New(color.FgMagenta).SprintFunc()
)

// FormatEvent renders an event for terminal display. It is a pure
// function of the event; unrecognized types fall back to the type tag
// plus the pretty-printed raw payload.
func FormatEvent(ev *domain.Event) string {
	switch ev.Type {
	case domain.EventAgentResponse:
		var body domain.AgentResponseBody
		if err := json.Unmarshal(ev.Body, &body); err != nil {
			return rawDump(ev)
		}
		return fmt.Sprintf("%s %s", neoLabel("[neo]"), body.Content)

	case domain.EventUserInput:
		var body domain.UserInputBody
		if err := json.Unmarshal(ev.Body, &body); err != nil {
			return rawDump(ev)
		}
		return fmt.Sprintf("%s %s", youLabel("[you]"), body.Content)

	case domain.EventApprovalRequest:
		var body domain.ApprovalRequestBody
		if err := json.Unmarshal(ev.Body, &body); err != nil {
			return rawDump(ev)
		}
		return fmt.Sprintf("%s %s\n  request id: %s",
			approvalLabel("[approval required]"), body.Description, body.ApprovalRequestID)

	default:
		return rawDump(ev)
	}
}

// rawDump renders the type tag plus the indented raw payload.
func rawDump(ev *domain.Event) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, ev.Body, "", "  "); err != nil {
		return fmt.Sprintf("%s %s", otherLabel("["+string(ev.Type)+"]"), string(ev.Body))
	}
	return fmt.Sprintf("%s %s", otherLabel("["+string(ev.Type)+"]"), buf.String())
}
