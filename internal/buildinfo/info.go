package buildinfo

var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	// Realm is the realm a server resolved the request to; empty for local builds.
	Realm string `json:"realm,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/darmiel/realmbroker",
		Service:    "realmbroker",
		Version:    Version,
		CommitHash: CommitHash,
	}
}
