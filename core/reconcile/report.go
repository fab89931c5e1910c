package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Result is the flat, serializable form of an Outcome returned to callers.
type Result struct {
	Changed   bool            `json:"changed"`
	Action    string          `json:"action"`
	Object    map[string]any  `json:"object"`
	Message   string          `json:"message"`
	Error     *Failure        `json:"error"`
	Diff      *Diff           `json:"diff,omitempty"`
	Patch     json.RawMessage `json:"patch,omitempty"`
	CheckMode bool            `json:"check_mode"`
	Stage     Stage           `json:"stage"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool {
	return r.Error != nil
}

// Report maps an outcome to a Result. It has no side effects.
func Report(o *Outcome) Result {
	res := Result{
		Changed:   o.Changed,
		Action:    o.Action.Past(),
		Object:    o.Object,
		Message:   message(o),
		Error:     o.Failure,
		Diff:      o.Diff,
		CheckMode: o.DryRun,
		Stage:     o.Stage,
	}

	if o.Action == ActionUpdate && o.Diff != nil {
		if patch, err := mergePatch(o.Diff); err == nil {
			res.Patch = patch
		}
	}
	return res
}

func message(o *Outcome) string {
	subject := strings.TrimSpace(o.Kind + " " + o.Key)

	if o.Failure != nil {
		if o.Failure.MutationAttempted {
			return fmt.Sprintf("%s: %s failed, remote state unknown: %s", subject, o.Action, o.Failure.Message)
		}
		return fmt.Sprintf("%s: %s", subject, o.Failure.Message)
	}

	switch o.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
		return fmt.Sprintf("%s %s", subject, o.Action.Past())
	default:
		if o.Intent == IntentAbsent {
			return subject + " already absent"
		}
		return subject + " already exists"
	}
}

// mergePatch renders an update diff as an RFC 7386 merge patch.
func mergePatch(d *Diff) (json.RawMessage, error) {
	before, err := json.Marshal(d.Before)
	if err != nil {
		return nil, err
	}
	after, err := json.Marshal(d.After)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(before, after)
}

// WriteText renders a Result in a compact, human-readable form.
func WriteText(w io.Writer, r Result) error {
	var b strings.Builder

	status := "ok"
	switch {
	case r.Failed():
		status = "failed"
	case r.Changed:
		status = "changed"
	}
	if r.CheckMode {
		status += " (check mode)"
	}

	fmt.Fprintf(&b, "%s: %s\n", status, r.Message)

	if r.Diff != nil {
		for _, field := range diffFields(r.Diff) {
			before, hadBefore := r.Diff.Before[field]
			after, hasAfter := r.Diff.After[field]
			switch {
			case !hadBefore:
				fmt.Fprintf(&b, "  + %s: %s\n", field, render(after))
			case !hasAfter:
				fmt.Fprintf(&b, "  - %s: %s\n", field, render(before))
			default:
				fmt.Fprintf(&b, "  ~ %s: %s -> %s\n", field, render(before), render(after))
			}
		}
	}

	if r.Error != nil {
		fmt.Fprintf(&b, "  stage: %s\n  code: %s\n", r.Error.Stage, r.Error.Code)
		if r.Error.StatusCode != 0 {
			fmt.Fprintf(&b, "  status: %d\n", r.Error.StatusCode)
		}
		if r.Error.Body != "" {
			fmt.Fprintf(&b, "  body: %s\n", r.Error.Body)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func diffFields(d *Diff) []string {
	seen := make(map[string]struct{}, len(d.Before)+len(d.After))
	for k := range d.Before {
		seen[k] = struct{}{}
	}
	for k := range d.After {
		seen[k] = struct{}{}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func render(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
