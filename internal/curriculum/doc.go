// Package curriculum drives generation of a complete language course.
//
// The Orchestrator runs seven stages strictly in order: ensure the language
// exists, ensure the course exists (asking the model for its metadata when
// it does not), plan the curriculum, materialize skills and lessons from
// the plan, generate content for every lesson, create the fixed
// assessments, and finalize the course record. Every generative call goes
// through a generation.Completer, so truncated model output is continued
// rather than retried from scratch, and is costed into a ledger owned by
// the run.
package curriculum
