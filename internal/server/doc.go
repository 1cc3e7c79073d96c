// Package server exposes analysis over HTTP.
//
//	POST /api/analyze  {"text": "..."}                                  -> {"suggestions": [...]}
//	POST /api/apply    {"text": "...", "suggestion": {...}, "improvementIndex": 0} -> {"text": "..."}
//	GET  /healthz
//
// Errors are returned as {"detail": "..."}.
package server
