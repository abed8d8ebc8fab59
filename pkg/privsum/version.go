package privsum

// Version is the semantic version populated at build time via ldflags. In
// development it defaults to v0.0.0-dev.
var Version = "v0.0.0-dev"

// UserAgent identifies the library in transport handshakes and logs.
func UserAgent() string {
	return "privsum-go/" + Version
}
