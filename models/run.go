package models

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
)

// SourceKind selects where records come from.
type SourceKind string

const (
	SourceAPI SourceKind = "api" // one catalog fetch per identifier
	SourceDir SourceKind = "dir" // one JSON document per local file
)

// ParseSourceKind validates the --source flag.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(strings.ToLower(strings.TrimSpace(s))) {
	case SourceAPI, "remote":
		return SourceAPI, nil
	case SourceDir, "local":
		return SourceDir, nil
	default:
		return "", fmt.Errorf("unknown source: %q (want api or dir)", s)
	}
}

// ProfileAuto lets each record's shape pick its profile.
const ProfileAuto = "auto"

// ProfileMode is either a fixed profile or per-record detection.
type ProfileMode struct {
	Fixed dats.Profile // empty means auto
}

// ParseProfileMode validates the --profile flag.
func ParseProfileMode(s string) (ProfileMode, error) {
	if s == "" || strings.EqualFold(s, ProfileAuto) {
		return ProfileMode{}, nil
	}
	p, err := dats.ParseProfile(s)
	if err != nil {
		return ProfileMode{}, err
	}
	return ProfileMode{Fixed: p}, nil
}

// Resolve returns the profile to assemble rec with.
func (m ProfileMode) Resolve(rec dats.Record) dats.Profile {
	if m.Fixed != "" {
		return m.Fixed
	}
	return dats.DetectProfile(rec)
}

// String renders the mode the way the --profile flag spells it.
func (m ProfileMode) String() string {
	if m.Fixed == "" {
		return ProfileAuto
	}
	return string(m.Fixed)
}

// ExportConfig holds runtime options for one export run.
// Values come from CLI flags layered over Config.
type ExportConfig struct {
	Source   SourceKind
	Dir      string
	IDs      []string
	Profile  ProfileMode
	OutDir   string
	Encoding string
	FailFast bool
}

// CheckConfig holds runtime options for one drift check.
type CheckConfig struct {
	Input    string
	Match    string
	Encoding string
	Format   string
}
