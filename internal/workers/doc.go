/*
Package workers sizes worker pools for containerized deployments.

runtime.NumCPU() reports the host's CPU count even when a cgroup limit
caps the container well below it; GOMAXPROCS (Go 1.19+) tracks the
container limit. The helpers here derive pool sizes from GOMAXPROCS with
a per-workload multiplier:

	workers.ForCPU(limit)   // 1.0x - encoding, compression
	workers.ForIO(limit)    // 2.0x - disk and network waits
	workers.ForMixed(limit) // 1.5x - read, process, write pipelines

Batch transcoding is CPU-bound (ffmpeg saturates its cores), so the job
manager uses ForCPU. The TRANSCODE_WORKERS environment variable
overrides the calculation for operators tuning a specific deployment.
*/
package workers
