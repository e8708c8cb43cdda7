// Package cmd implements the fauxhttp CLI commands using Cobra.
//
// Available commands:
//   - serve: Answer HTTP requests on a local port from fixture files
//   - validate: Check fixture files against the fixture schema
//   - list: Display the routes defined in fixture files
//   - match: Show which route a request would be answered by
//   - init: Create a config file and an example fixture
//   - version: Show fauxhttp version information
//
// Fixture arguments may be files or directories. When none are given the
// "fixtures" entry of the config file is used.
package cmd
