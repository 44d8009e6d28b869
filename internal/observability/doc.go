// Package observability builds the zap logger shared by every component.
package observability
