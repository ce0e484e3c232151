package convert

import (
	"fmt"
	"strings"
)

// MaxMixInputs is the most streams a single amix filter accepts.
const MaxMixInputs = 32

// MixGraph builds a filter_complex expression mixing n inputs into [aud].
//
// Every input i first passes through dynaudnorm (normalize) or anull into
// [audI]. Streams are gathered into groups of at most MaxMixInputs; a full
// group with inputs still pending is mixed into a carry-over stream [mixN]
// which seeds the next group. The last group is mixed into [aud].
func MixGraph(n int, normalize bool) string {
	if n <= 0 {
		return ""
	}
	pre := "anull"
	if normalize {
		pre = "dynaudnorm"
	}
	stages := make([]string, 0, n+n/MaxMixInputs+1)
	for i := range n {
		stages = append(stages, fmt.Sprintf("[%d:a]%s[aud%d]", i, pre, i))
	}

	var group []string
	carry := 0
	for i := range n {
		group = append(group, fmt.Sprintf("[aud%d]", i))
		if len(group) == MaxMixInputs && i < n-1 {
			label := fmt.Sprintf("[mix%d]", carry)
			stages = append(stages, mixStage(group, normalize, label))
			group = []string{label}
			carry++
		}
	}
	stages = append(stages, mixStage(group, normalize, "[aud]"))
	return strings.Join(stages, ";")
}

func mixStage(inputs []string, normalize bool, out string) string {
	var b strings.Builder
	for _, in := range inputs {
		b.WriteString(in)
	}
	fmt.Fprintf(&b, "amix=%d", len(inputs))
	if normalize {
		b.WriteString(",dynaudnorm")
	}
	b.WriteString(out)
	return b.String()
}
