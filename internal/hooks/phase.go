package hooks

import "github.com/BurntSushi/toml"

// Phase identifies a lifecycle point at which user commands may run
// (spec §3's "Hook phase").
type Phase string

const (
	PhasePostCreate Phase = "post-create"
	PhasePostStart  Phase = "post-start"
	PhasePreCommit  Phase = "pre-commit"
	PhasePreMerge   Phase = "pre-merge"
	PhasePostMerge  Phase = "post-merge"
	PhasePreRemove  Phase = "pre-remove"
	PhasePostRemove Phase = "post-remove"
	PhasePostSwitch Phase = "post-switch"
)

// AllPhases enumerates every recognized phase, in the order spec §3
// lists them. Used both to validate config keys and to enumerate phases
// an orchestrator must approve at the gate (spec §4.E "approve at the
// gate").
var AllPhases = []Phase{
	PhasePostCreate, PhasePostStart, PhasePreCommit, PhasePreMerge,
	PhasePostMerge, PhasePreRemove, PhasePostRemove, PhasePostSwitch,
}

// Discipline selects which subprocess runner mode executes a phase's
// commands (spec §4.E table).
type Discipline int

const (
	Foreground Discipline = iota
	Detached
)

// FailStrategy selects how a phase's failure propagates (spec §4.E
// table).
type FailStrategy int

const (
	FailFast FailStrategy = iota
	WarnOnly
)

type phaseBehavior struct {
	Discipline   Discipline
	FailStrategy FailStrategy
}

// phaseDispatch is spec §4.E's discipline/failure-strategy table,
// verbatim.
var phaseDispatch = map[Phase]phaseBehavior{
	PhasePostCreate: {Foreground, FailFast},
	PhasePostStart:  {Detached, WarnOnly},
	PhasePreCommit:  {Foreground, FailFast},
	PhasePreMerge:   {Foreground, FailFast},
	PhasePostMerge:  {Foreground, WarnOnly},
	PhasePreRemove:  {Foreground, FailFast},
	PhasePostRemove: {Detached, WarnOnly},
	PhasePostSwitch: {Detached, WarnOnly},
}

// Command is one configured hook command: an optional name (empty for
// a single unnamed command in a phase) and its unexpanded template
// string.
type Command struct {
	Name     string
	Template string
}

// PhaseSet maps each configured phase to its ordered command list.
type PhaseSet map[Phase][]Command

// ParsePhases decodes the hook-phase keys from a TOML document's root
// table. A phase key may be either a bare string (one unnamed command)
// or a table mapping name -> template; named commands preserve the
// document's insertion order via toml.MetaData.Keys(), matching spec
// §5's "commands execute in config order" guarantee. Grounded on the
// teacher's internal/config.parseHooksConfig raw-map-then-typed-merge
// idiom, generalized to recover key order (the teacher's map[string]any
// parse does not need order since it has no multi-command phases).
func ParsePhases(data []byte) (PhaseSet, error) {
	var root map[string]interface{}
	meta, err := toml.Decode(string(data), &root)
	if err != nil {
		return nil, err
	}

	result := make(PhaseSet)
	for _, phase := range AllPhases {
		raw, ok := root[string(phase)]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			result[phase] = []Command{{Template: v}}
		case map[string]interface{}:
			var cmds []Command
			for _, key := range meta.Keys() {
				if len(key) != 2 || key[0] != string(phase) {
					continue
				}
				name := key[1]
				if tmpl, ok := v[name].(string); ok {
					cmds = append(cmds, Command{Name: name, Template: tmpl})
				}
			}
			result[phase] = cmds
		}
	}
	return result, nil
}

// Merge concatenates user's and project's command lists per phase, user
// commands first, then project's (spec §6: "if both set the phase,
// commands are concatenated (user first, then project)").
func Merge(user, project PhaseSet) PhaseSet {
	result := make(PhaseSet)
	for _, phase := range AllPhases {
		var merged []Command
		merged = append(merged, user[phase]...)
		merged = append(merged, project[phase]...)
		if len(merged) > 0 {
			result[phase] = merged
		}
	}
	return result
}

// UnknownPhaseHint returns a "did you mean X?" suggestion for an
// unrecognized phase key (spec §7), or "" if key is a known phase or
// too dissimilar to any known phase to guess.
func UnknownPhaseHint(key string) string {
	for _, phase := range AllPhases {
		if string(phase) == key {
			return ""
		}
	}
	best := ""
	bestDist := -1
	for _, phase := range AllPhases {
		d := levenshtein(key, string(phase))
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = string(phase)
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return best
	}
	return ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[n]
}
