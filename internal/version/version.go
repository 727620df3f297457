// Package version holds the build version, set with
// -ldflags "-X github.com/livp123/mcapstat/internal/version.Version=...".
package version

// Version is the mcapstat release, "dev" for local builds.
// Version 是 mcapstat 的版本号，本地构建为 "dev"。
var Version = "dev"
