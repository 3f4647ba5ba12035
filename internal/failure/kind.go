package failure

import "strings"

// Kind is the failure taxonomy every error is sorted into.
type Kind string

const (
	KindRenderer Kind = "renderer_failure"
	KindLoad     Kind = "load_failure"
	KindInput    Kind = "input_failure"
	KindAudio    Kind = "audio_failure"
	KindMemory   Kind = "memory_failure"
	KindNetwork  Kind = "network_failure"
	KindInit     Kind = "init_failure"
	KindRuntime  Kind = "runtime_failure"
)

// Kinds lists every kind in classification priority order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(keywordGroups)+1)
	for _, group := range keywordGroups {
		kinds = append(kinds, group.kind)
	}
	return append(kinds, KindRuntime)
}

// ParseKind accepts either the full name ("init_failure") or its short form ("init").
func ParseKind(value string) (Kind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, kind := range Kinds() {
		if string(kind) == normalized || strings.TrimSuffix(string(kind), "_failure") == normalized {
			return kind, true
		}
	}
	return "", false
}

type keywordGroup struct {
	kind     Kind
	keywords []string
}

// keywordGroups is evaluated top to bottom; the first group with a matching
// keyword wins. The order is part of the contract.
var keywordGroups = []keywordGroup{
	{KindRenderer, []string{"render", "canvas", "webgl", "shader", "texture", "draw"}},
	{KindLoad, []string{"load", "import", "fetch", "chunk"}},
	{KindInput, []string{"pointer", "touch", "input", "keyboard"}},
	{KindAudio, []string{"audio", "sound"}},
	{KindMemory, []string{"memory", "heap", "alloc"}},
	{KindNetwork, []string{"network", "connection", "offline", "timeout"}},
	{KindInit, []string{"init", "setup", "construct"}},
}

// Classify maps a failure message onto a Kind by keyword. Messages that match
// several groups resolve to the earliest group.
func Classify(message string) Kind {
	lower := strings.ToLower(message)
	for _, group := range keywordGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.kind
			}
		}
	}
	return KindRuntime
}
