// Package engine runs translations and keeps their history.
//
// An Engine picks a translator by mode, translates a program member by
// member, and records the outcome as a run in the store: one row per run,
// one row per translated member with its canonical IR JSON, printed text,
// and content hash. Runs and members are stamped from a logical Clock that
// resumes from the store, so the log has a total order independent of
// wall time.
//
// Replay re-translates a program under a recorded run's mode and compares
// member hashes against the log. Because fresh names are reset per run, an
// unchanged program under an unchanged translator always replays clean.
package engine
