// Package log provides named, levelled loggers on top of the standard library
// logger.
//
// Every agentscope component obtains its logger once, at package level:
//
//	var logger = log.ForService("search")
//
//	logger.Infof("serving %d agents", n)
//	logger.Warnf("failed to close rows: %v", err)
//	logger.Debugf("fetching %d records at offset %d", limit, offset)
//
// Each line carries the service marker "[name>]" after the level, which keeps
// the output grep-friendly when several components log to the same stream.
//
// Debug output is off by default. It can be enabled for every service with
// SetGlobalDebug, or for a subset with EnableDebugFor and ParseDebugServices
// (the CLI's --debug-services flag takes a comma-separated list).
//
// SetOutput redirects all loggers, existing ones included; tests use it with a
// bytes.Buffer to assert on log contents. All functions are safe for concurrent
// use.
package log
