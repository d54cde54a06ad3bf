// Package responses writes JSON bodies, paginated envelopes and RFC 7807 problem details.
package responses
