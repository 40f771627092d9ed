// Package process runs external commands with captured output, hard
// timeouts, and graceful termination. On cancellation the whole process
// group receives SIGTERM first, then SIGKILL once the grace period
// expires, so child processes cannot outlive the request that spawned
// them.
package process
