// Package audit is the append-only JSONL log of every external command
// wtr executes (spec §4.J): one JSON object per line, rotated at a 1MB
// size bound (renamed to commands.jsonl.old, clobbering any prior one).
// Each entry is one write under an in-process mutex, so concurrent
// appends through the same Log never interleave a partial line.
package audit
