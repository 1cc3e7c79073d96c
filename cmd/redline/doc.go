// Redline is a CLI and HTTP service that reviews clinical prose with LLM
// providers.
//
// It splits a document into sentence-aligned segments, asks the configured
// model for localized suggestions on each, and reports them with character
// offsets into the original text. Suggestions can then be applied one at a
// time.
//
// Usage:
//
//	redline analyze report.txt                  # analyze a file
//	redline analyze - < report.txt              # analyze stdin
//	redline analyze report.txt --format json --out suggestions.json
//	redline apply report.txt --report suggestions.json --id <id> --index 0
//	redline serve --addr :8000                  # HTTP API
package main
