// Package main provides the entry point for the Emissary CLI.
//
// Emissary stores named profiles, each an ordered list of templated HTTP
// actions, and runs them against a message, key=value parameters and a
// page context.
//
// Usage:
//
//	emissary profile add <name>
//	emissary action add <profile> --name N --method POST --url URL
//	emissary run <profile> -p "id=42" -m "hello #world"
//
// See --help for all available options.
package main

// main is the entry point for Emissary.
func main() {
	Execute()
}
