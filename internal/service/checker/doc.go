// Package checker verifies that a host is ready to run the backup application.
//
// It evaluates a fixed, ordered catalog of checks (tool presence, runtime
// modules, tape device access, runtime directories, configuration) and
// aggregates the outcomes into a single report. Every check always runs, so
// one invocation surfaces the full defect list. The exit disposition is
// driven solely by failed checks; warnings are advisory.
package checker
