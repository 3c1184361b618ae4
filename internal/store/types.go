package store

import "github.com/roach88/docket/internal/ir"

// ReleaseRecord is one row of the release log.
type ReleaseRecord struct {
	Version       int32
	ID            string
	Package       string
	Tag           string
	Graph         ir.PackageGraph
	Era           map[string]string
	Fingerprint   string
	EngineVersion string
	GraphVersion  string
}

// DiagnosticRecord is one reference failure recorded with a release.
type DiagnosticRecord struct {
	ReleaseID  string
	Seq        int
	Kind       string
	Subject    string
	Text       string
	Candidates []string
}
