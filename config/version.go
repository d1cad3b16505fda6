package config

var (
	Version    string = "dev"
	CommitHash string = "n/a"
)

// IsProduction reports whether this build was stamped as a release build.
func IsProduction() bool {
	return Version == "release" && CommitHash != "n/a"
}

// IsDevelopment reports whether this is a development build.
func IsDevelopment() bool {
	return Version == "dev"
}
