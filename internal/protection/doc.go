// Package protection builds the FEC recovery layers over split archive
// volumes.
//
// A monthly FULL backup leaves an ordered run of volume files (chunks) named
// "{increment} FULL {archive}.7z.{NNN}". This package decides how much par2
// redundancy those chunks get, partitions them into bounded protection
// groups so each par2 invocation stays inside a predictable memory budget,
// stages every group as a directory of symlinks back to the real volumes,
// runs par2 once per group plus once for an archive-wide overall layer, and
// tears the symlinks back down.
//
// # Key Types
//
// Chunk: reference to one discovered volume file. Chunks are discovered,
// never created; the archiver owns the bytes.
//
// Strategy: one row of a closed tier table keyed on total chunk count.
// Larger archives get wider memory budgets and leaner redundancy; past
// forty chunks the partition switches to overlapping sliding windows.
//
// Group: a contiguous (or, under sliding windows, overlapping) run of chunks
// protected as one par2 unit. Its name doubles as the staging directory name
// and the recovery base name.
//
// ArchiveReport: per-run summary with one GroupOutcome per attempted build.
//
// # Pipeline
//
// Processor.ProcessArchive drives one archive increment end to end:
// discover chunks, consolidate them into the working subdirectory, select a
// Strategy, partition, stage and build each group in order, build the
// overall layer, unstage. One group failing never stops the groups after it;
// only directory-level faults abort the archive.
//
// Everything runs sequentially. par2 saturates CPU and the memory ceiling on
// its own, so concurrent invocations would fight over the budget the
// strategy table is calibrated against. Callers serialise whole runs.
package protection
