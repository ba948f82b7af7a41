/*
Package workers provides utilities for determining worker pool sizes in
containerized environments.

runtime.NumCPU reports the host machine's CPU count even when a container
is limited to a fraction of it via cgroups. Go 1.19+ sets GOMAXPROCS from
the container CPU limit, so the helpers here derive worker counts from
GOMAXPROCS instead:

	// For I/O-bound work (filesystem scans, database writes)
	n := workers.ForIO(16)

	// For CPU-bound work
	n := workers.ForCPU(8)

All functions respect the SCAN_WORKERS environment variable, which lets
operators override the automatic calculation, and accept a hard cap (0 for
none) to avoid runaway fan-out on large machines.
*/
package workers
