package version

// Version is the release version, overridden at build time via
// -ldflags "-X github.com/livp123/logship/internal/version.Version=vX.Y.Z".
// Version 是发布版本，在构建时通过 ldflags 覆盖。
var Version = "dev"
