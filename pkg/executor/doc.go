// Package executor performs daglink's filesystem mutations.
//
// Every mutation is first attempted in-process through types.FS. When that
// fails, the permission gate decides whether the operation may be retried
// through an escalation helper such as sudo:
//
//   - dry-run: nothing is mutated; the equivalent command is printed and
//     the gate always grants
//   - force: the gate always grants
//   - interactive: the operator is asked, an empty answer meaning yes
//   - otherwise: the gate denies and the operation is Skipped
//
// A failure after escalation is reported and never retried.
package executor
