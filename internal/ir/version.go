package ir

// Release logs record both versions so a replay can tell which build and
// which graph layout produced a stored release.
const (
	// GraphVersion is the layout version of compiled package graphs.
	GraphVersion = "1"

	// EngineVersion is the docket release.
	EngineVersion = "0.1.0"
)

// BuildInfo renders the versions for `docket --version`.
func BuildInfo() string {
	return EngineVersion + " (graph v" + GraphVersion + ")"
}
