/*
Package sync implements syncfiler's mirroring algorithm. It makes a replica
directory contain exactly the files in a source directory, with identical
contents.

Each pass works from scratch:
1) Snapshot -- the top-level regular files of the source and the replica are
   listed. Subdirectories are ignored, and nothing is persisted between
   passes.
2) Diff -- files are matched by name. A source file whose replica has a
   different fingerprint (or no replica at all) is scheduled for a transfer.
   Replica files without a source are scheduled for removal.
3) Execute -- every transfer and removal is attempted with a bounded number
   of retries. Transfers are verified by fingerprinting both sides after the
   copy, so a source that was modified mid-copy is retried rather than
   silently mirrored in a torn state.

A file that still fails after its last attempt is counted in the pass's
Outcome, but never stops the rest of the pass. The Scheduler repeats passes on
a fixed interval until its context is cancelled.
*/
package sync
