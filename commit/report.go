package commit

import (
	"fmt"
	"strings"
)

const lineBreak = "<br/>"

var htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// escape makes s safe inside the HTML body of a notification. Only tag
// braces are replaced.
func escape(s string) string {
	return htmlEscaper.Replace(s)
}

// pluralize returns "n word" with an "s" appended unless n is 1.
func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// reportTitle returns the notification title for an outcome.
func reportTitle(errs, warnings int) string {
	switch {
	case errs > 0:
		return "Commit failed with " + pluralize(errs, "error")
	case warnings > 0:
		return "Commit finished with " + pluralize(warnings, "warning")
	default:
		return "Commit successful"
	}
}

// reportBody renders the file summary, message, feedback, warning tally and,
// when errors exist, every problem message.
func reportBody(message string, out *Outcome) string {
	failed := len(out.failed)
	var b strings.Builder
	b.WriteString(pluralize(out.Committed(), "file") + " committed")
	if failed > 0 {
		b.WriteString(", " + pluralize(failed, "file") + " failed to commit")
	}
	if message != "" {
		b.WriteString(": " + escape(message))
	}
	if len(out.feedback) > 0 {
		b.WriteString(lineBreak + strings.Join(out.feedback, lineBreak))
	}

	errs, warnings := out.Classify()
	if warnings > 0 {
		b.WriteString(lineBreak + pluralize(warnings, "warning"))
	}
	if errs > 0 {
		msgs := make([]string, 0, len(out.problems))
		for _, p := range out.problems {
			msgs = append(msgs, escape(p.Error()))
		}
		b.WriteString(lineBreak + strings.Join(msgs, lineBreak))
	}
	return b.String()
}

// report routes the outcome to the request's result handler or to the
// notifier.
func (o *Orchestrator) report(req *Request, out *Outcome) {
	if req.ResultHandler != nil {
		if out.Success() {
			req.ResultHandler.OnSuccess(req.Message)
		} else {
			req.ResultHandler.OnFailure()
		}
		return
	}

	errs, warnings := out.Classify()
	title := reportTitle(errs, warnings)
	body := reportBody(req.Message, out)
	switch {
	case errs > 0:
		o.notifier.NotifyError(title, body)
	case warnings > 0:
		o.notifier.NotifyWarning(title, body)
	default:
		o.notifier.NotifySuccess(title, body)
	}
}
