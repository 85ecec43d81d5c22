// Package squashmsg synthesizes a commit message for a squash merge
// (spec §4.H "invoke LLM tool to synthesize a squash message").
//
// New package; no teacher file covers this, and no LLM client library
// appears anywhere in the retrieved pack's go.mod files. Grounded
// instead on the teacher's internal/forge CLI-shellout idiom
// (exec.LookPath + exec.Command against "gh"/"glab"): Synthesizer shells
// out to a user-configured command the same way, and a deterministic
// fallback covers the no-command-configured case so a squash commit
// message can always be produced without a network call.
package squashmsg
