package dats

import (
	"fmt"
	"strings"
)

// Profile selects the column set a record is assembled into.
type Profile string

const (
	ProfileDataset    Profile = "dataset"
	ProfileDataFormat Profile = "data-format"
)

// ParseProfile accepts the CLI spellings of a profile.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dataset", "datasets":
		return ProfileDataset, nil
	case "data-format", "data-formats", "data-standard", "format":
		return ProfileDataFormat, nil
	default:
		return "", fmt.Errorf("unknown profile: %q", s)
	}
}

// Row is an assembled record: one value per profile column.
type Row map[string]string

// Dataset profile columns.
const (
	ColTitle             = "title"
	ColDescription       = "description"
	ColDatasetIdentifier = "datasetIdentifier"
	ColDisease           = "disease"
	ColAuthors           = "authors"
	ColCreated           = "created"
	ColModified          = "modified"
	ColAccessed          = "accessed"
	ColLandingPage       = "landingPage"
	ColAccessPage        = "accessPage"
	ColFormat            = "format"
	ColConformsTo        = "conformsTo"
	ColLicense           = "license"
	ColGeography         = "geography"
	ColLocationCode      = "apolloLocationCode"
	ColISO3166           = "ISO_3166"
	ColISO3166Numeric    = "ISO_3166-1"
	ColISO3166Alpha3     = "ISO_3166-1_alpha-3"
	ColDigitalCommons    = "storedInDigitalCommons"
	ColZenodo            = "storedInZenodo"
)

// Data-format profile columns.
const (
	ColName               = "name"
	ColIdentifier         = "identifier"
	ColIdentifierSource   = "identifier_source"
	ColType               = "type"
	ColTypeIRI            = "type_IRI"
	ColLicenses           = "licenses"
	ColVersion            = "version"
	ColHumanReadable      = "human-readable_data_format_specification_value"
	ColHumanReadableIRI   = "human-readable_data_format_specification_value_IRI"
	ColMachineReadable    = "machine-readable_data_format_specification_value"
	ColMachineReadableIRI = "machine-readable_data_format_specification_value_IRI"
	ColValidator          = "validator_value"
	ColValidatorIRI       = "validator_value_IRI"
)

var datasetColumns = []string{
	ColTitle, ColDescription, ColDatasetIdentifier, ColDisease, ColAuthors,
	ColCreated, ColModified, ColAccessed, ColLandingPage, ColAccessPage,
	ColFormat, ColConformsTo, ColLicense, ColGeography, ColLocationCode,
	ColISO3166, ColISO3166Numeric, ColISO3166Alpha3, ColDigitalCommons, ColZenodo,
}

var dataFormatColumns = []string{
	ColName, ColIdentifier, ColIdentifierSource, ColType, ColTypeIRI,
	ColDescription, ColLicenses, ColVersion,
	ColHumanReadable, ColHumanReadableIRI,
	ColMachineReadable, ColMachineReadableIRI,
	ColValidator, ColValidatorIRI,
}

// Columns returns the ordered column names of p.
func (p Profile) Columns() []string {
	var cols []string
	switch p {
	case ProfileDataset:
		cols = datasetColumns
	case ProfileDataFormat:
		cols = dataFormatColumns
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// IdentifierColumn names the column holding the catalog identifier.
func (p Profile) IdentifierColumn() string {
	if p == ProfileDataset {
		return ColDatasetIdentifier
	}
	return ColIdentifier
}

// Separator replaces line breaks inside values of this profile.
func (p Profile) Separator() string {
	if p == ProfileDataset {
		return "; "
	}
	return ", "
}

// ProfileForHeader guesses the profile a previously written file was
// exported with from its header.
func ProfileForHeader(header []string) (Profile, bool) {
	for _, h := range header {
		switch h {
		case ColDatasetIdentifier:
			return ProfileDataset, true
		case ColIdentifier:
			return ProfileDataFormat, true
		}
	}
	return "", false
}

// DetectProfile picks a profile from the record's shape: a title marks a
// dataset, anything else is treated as a data format.
func DetectProfile(rec Record) Profile {
	if _, ok := String(rec, "title"); ok {
		return ProfileDataset
	}
	return ProfileDataFormat
}

// Assemble builds the full row for rec under p. Every column of p is set.
func Assemble(rec Record, p Profile) Row {
	var row Row
	switch p {
	case ProfileDataset:
		row = assembleDataset(rec)
	default:
		row = assembleDataFormat(rec)
		p = ProfileDataFormat
	}
	sep := p.Separator()
	for k, v := range row {
		row[k] = clean(v, sep)
	}
	return row
}

// AssembleAuto detects the profile of rec and assembles it.
func AssembleAuto(rec Record) (Row, Profile) {
	p := DetectProfile(rec)
	return Assemble(rec, p), p
}

func assembleDataset(rec Record) Row {
	dates := ExtractDates(rec)
	iso := ExtractISOCodes(rec)
	stored := ExtractStorageFlags(rec)
	return Row{
		ColTitle:             Title(rec),
		ColDescription:       Description(rec, ProfileDataset.Separator()),
		ColDatasetIdentifier: Identifier(rec),
		ColDisease:           Disease(rec),
		ColAuthors:           Authors(rec),
		ColCreated:           dates.Creation,
		ColModified:          dates.Modification,
		ColAccessed:          dates.Accessed,
		ColLandingPage:       LandingPage(rec),
		ColAccessPage:        AccessPage(rec),
		ColFormat:            Format(rec),
		ColConformsTo:        ConformsTo(rec),
		ColLicense:           License(rec),
		ColGeography:         Geography(rec),
		ColLocationCode:      LocationCodes(rec),
		ColISO3166:           iso.ISO3166,
		ColISO3166Numeric:    iso.ISO3166Numeric,
		ColISO3166Alpha3:     iso.ISO3166Alpha3,
		ColDigitalCommons:    stored.DigitalCommons,
		ColZenodo:            stored.Zenodo,
	}
}

func assembleDataFormat(rec Record) Row {
	extra := ExtractExtraProperties(rec)
	return Row{
		ColName:               Name(rec),
		ColIdentifier:         Identifier(rec),
		ColIdentifierSource:   IdentifierSource(rec),
		ColType:               Type(rec),
		ColTypeIRI:            TypeIRI(rec),
		ColDescription:        Description(rec, ProfileDataFormat.Separator()),
		ColLicenses:           License(rec),
		ColVersion:            Version(rec),
		ColHumanReadable:      extra.HumanReadable.Value,
		ColHumanReadableIRI:   extra.HumanReadable.ValueIRI,
		ColMachineReadable:    extra.MachineReadable.Value,
		ColMachineReadableIRI: extra.MachineReadable.ValueIRI,
		ColValidator:          extra.Validator.Value,
		ColValidatorIRI:       extra.Validator.ValueIRI,
	}
}

// clean keeps a value on one TSV line and maps blanks to Null.
func clean(v, sep string) string {
	v = replaceNewlines(v, sep)
	v = strings.ReplaceAll(v, "\t", " ")
	if strings.TrimSpace(v) == "" {
		return Null
	}
	return v
}

// Values returns the row's values in column order. Columns the row lacks
// come back as Null.
func (r Row) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		v, ok := r[c]
		if !ok {
			v = Null
		}
		out[i] = v
	}
	return out
}
