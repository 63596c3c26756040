// Package version holds the server version string.
package version

// Version is the current server version. Overridden at build time via
// -ldflags "-X github.com/bbeeken/PDIMCPServer/internal/version.Version=...".
var Version = "1.0.0"

// ServerName identifies this server in MCP initialize responses and HTTP
// headers. Deployments may override it through configuration.
const ServerName = "mcp-pdi-sales"
