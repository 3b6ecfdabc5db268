// Package page supplies the page context a profile runs against.
//
// A Static provider returns fixed values given on the command line. A
// Fetcher downloads a URL and derives the title and visible text from the
// HTML, falling back to the same placeholders the browser popup used when
// a value is unavailable.
package page
