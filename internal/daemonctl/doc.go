// Package daemonctl starts and stops a background nimbus monitor.
//
// There is no control socket: the monitor's flock instance lock says whether
// it is running and its pid file says which process to signal. Stop sends
// SIGTERM and escalates to SIGKILL after a grace period.
package daemonctl
