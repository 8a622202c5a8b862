// Package mlops implements the interactive workflows that provision,
// snapshot, and tear down the AWS resources backing an MLflow-style
// experiment tracking stack: an RDS database for the backend store, an EC2
// instance for the tracking server, and an S3 bucket for artifacts.
package mlops

var (
	// VersionString is the git describe version set at build time
	VersionString = "?"

	// RevisionString is the git revision set at build time
	RevisionString = "?"

	// GeneratedString is the build date set at build time
	GeneratedString = "?"
)

// uniqueStrings drops duplicates while keeping the first-seen order, so
// that choice lists presented to a selector are deterministic.
func uniqueStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := []string{}

	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
