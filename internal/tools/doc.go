// Package tools defines the MCP tools exposed by visamcp and their handlers.
//
// Each tool is a 1:1 mapping onto one Visa API operation: the handler
// validates argument shape against the declared schema, makes a single client
// call, and converts the result or error into a uniform text envelope. No
// tool composes multiple client calls.
package tools
