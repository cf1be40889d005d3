// Package runlog builds the logger for a single pipeline run. Records go to
// stderr and to a timestamped file under the log directory; closing the
// returned io.Closer ends the run's file.
package runlog
