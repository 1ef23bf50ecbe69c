package version

// Version of the server. Overridden at build time with
//   go build -ldflags="-X 'github.com/dkeye/VoipWeb/internal/version.Version=v1.0.0'"
var Version = "dev"
