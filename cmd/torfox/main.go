// Package main provides the entry point for the torfox CLI.
//
// torfox opens a Firefox window whose traffic is routed through Tor.
//
// Usage:
//
//	torfox open [url]
//	torfox check
//	torfox kill
//
// See --help for all available options.
package main

// main is the entry point for torfox.
func main() {
	Execute()
}
