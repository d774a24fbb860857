package help

import (
	"fmt"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"gopkg.in/yaml.v3"
)

// Column documents where an exported column comes from.
type Column struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

var columnSources = map[string]string{
	dats.ColTitle:             "title",
	dats.ColDescription:       "description",
	dats.ColDatasetIdentifier: "identifier.identifier",
	dats.ColDisease:           "isAbout[0].name when it is a disease-ontology term",
	dats.ColAuthors:           "creators[] (firstName lastName, or organization name)",
	dats.ColCreated:           "distributions[].dates[] labelled creation",
	dats.ColModified:          "distributions[].dates[] labelled modification or modified",
	dats.ColAccessed:          "distributions[].dates[] labelled accessed",
	dats.ColLandingPage:       "distributions[0].access.landingPage",
	dats.ColAccessPage:        "distributions[0].access.accessURL",
	dats.ColFormat:            "distributions[0].formats[]",
	dats.ColConformsTo:        "distributions[0].conformsTo[0] name or identifier",
	dats.ColLicense:           "licenses[0].name",
	dats.ColGeography:         "spatialCoverage[].name",
	dats.ColLocationCode:      "spatialCoverage[].identifier.identifier",
	dats.ColISO3166:           "spatialCoverage[].relatedIdentifiers[] with source ISO 3166",
	dats.ColISO3166Numeric:    "spatialCoverage[].relatedIdentifiers[] with source ISO 3166-1 numeric",
	dats.ColISO3166Alpha3:     "spatialCoverage[].relatedIdentifiers[] with source ISO 3166-1 alpha-3",
	dats.ColDigitalCommons:    "storedIn names the MIDAS Digital Commons",
	dats.ColZenodo:            "storedIn names Zenodo",

	dats.ColName:               "name",
	dats.ColIdentifier:         "identifier.identifier",
	dats.ColIdentifierSource:   "identifier.identifierSource",
	dats.ColType:               "type.value",
	dats.ColTypeIRI:            "type.valueIRI",
	dats.ColLicenses:           "licenses[0].name",
	dats.ColVersion:            "version",
	dats.ColHumanReadable:      "extraProperties[] human-readable specification value",
	dats.ColHumanReadableIRI:   "extraProperties[] human-readable specification valueIRI",
	dats.ColMachineReadable:    "extraProperties[] machine-readable specification value",
	dats.ColMachineReadableIRI: "extraProperties[] machine-readable specification valueIRI",
	dats.ColValidator:          "extraProperties[] validator value",
	dats.ColValidatorIRI:       "extraProperties[] validator valueIRI",
}

// Columns returns the column reference for p in header order.
func Columns(p dats.Profile) []Column {
	cols := p.Columns()
	out := make([]Column, 0, len(cols))
	for _, name := range cols {
		out = append(out, Column{Name: name, Source: columnSources[name]})
	}
	return out
}

// ColumnsYAML renders the column reference for p.
func ColumnsYAML(p dats.Profile) ([]byte, error) {
	doc := struct {
		Profile    string   `yaml:"profile"`
		Identifier string   `yaml:"identifier_column"`
		Separator  string   `yaml:"list_separator"`
		Columns    []Column `yaml:"columns"`
	}{
		Profile:    string(p),
		Identifier: p.IdentifierColumn(),
		Separator:  p.Separator(),
		Columns:    Columns(p),
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column reference: %w", err)
	}
	return b, nil
}
