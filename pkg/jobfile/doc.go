// Package jobfile reads declarative job lists and turns them into
// executor jobs.
//
// A jobfile is TOML or YAML, chosen by extension:
//
//	[[jobs]]
//	name    = "bump version"
//	if      = "test -f package.json"
//	changes = ["package.json"]
//	run     = "npm version patch --no-git-tag-version"
//	undo    = "echo reverted"
//
//	[[jobs]]
//	name = "set test script"
//	[jobs.json]
//	file = "package.json"
//	set  = { "scripts.test" = "go test ./..." }
//
// "if" is a shell predicate: exit status 0 includes the job. "run" and
// "undo" are shell commands run from the project root. A "json" edit sets
// dotted keys in a JSON document before "run" executes, and its file is
// declared as a change automatically.
package jobfile
