package config

// Version is the graphfeed binary version.
// Set at build time via: -ldflags "-X github.com/graphfeed/graphfeed/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
