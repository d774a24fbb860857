package dats

import (
	"strings"
)

// Null stands in for any missing or blank source value.
const Null = "null"

// ListSeparator joins multi-valued fields.
const ListSeparator = "; "

// DiseaseOntologySource is the identifierSource that marks an isAbout entry as
// a disease term (SNOMED CT as registered on biosharing).
const DiseaseOntologySource = "https://biosharing.org/bsg-s000098"

// ISO 3166 identifier-source labels found under spatialCoverage.
const (
	ISO3166Label        = "ISO 3166"
	ISO3166NumericLabel = "ISO 3166-1 numeric"
	ISO3166Alpha3Label  = "ISO 3166-1 alpha-3"
	iso3166NumericAlias = "ISO 3166-1"
)

// Repositories inspected by StorageFlags.
const (
	DigitalCommonsRepository = "MIDAS Digital Commons"
	ZenodoRepository         = "Zenodo"
)

// Date slot labels. "modified" shows up in older records.
var dateSlots = map[string]string{
	"creation":     "creation",
	"modification": "modification",
	"modified":     "modification",
	"accessed":     "accessed",
}

// Dates holds the three named date slots of a dataset.
type Dates struct {
	Creation     string
	Modification string
	Accessed     string
}

// ISOCodes holds the three ISO 3166 columns, each joined across regions.
type ISOCodes struct {
	ISO3166        string
	ISO3166Numeric string
	ISO3166Alpha3  string
}

// SpecValue is a value/valueIRI pair taken from extraProperties.
type SpecValue struct {
	Value    string
	ValueIRI string
}

// ExtraProperties holds the three extraProperties categories of a data format.
type ExtraProperties struct {
	HumanReadable   SpecValue
	MachineReadable SpecValue
	Validator       SpecValue
}

// StorageFlags reports whether a dataset is stored in the two tracked
// repositories. Values are "TRUE", "FALSE" or Null.
type StorageFlags struct {
	DigitalCommons string
	Zenodo         string
}

// orNull returns s, or Null if s is blank.
func orNull(s string, ok bool) string {
	if !ok || strings.TrimSpace(s) == "" {
		return Null
	}
	return s
}

// joinSlots joins per-region slots, collapsing to Null when every slot is Null.
func joinSlots(slots []string) string {
	for _, s := range slots {
		if s != Null {
			return strings.Join(slots, ListSeparator)
		}
	}
	return Null
}

// Identifier returns identifier.identifier.
func Identifier(rec Record) string {
	return orNull(String(rec, "identifier", "identifier"))
}

// IdentifierSource returns identifier.identifierSource.
func IdentifierSource(rec Record) string {
	return orNull(String(rec, "identifier", "identifierSource"))
}

// Title returns the dataset title.
func Title(rec Record) string {
	return orNull(String(rec, "title"))
}

// Name returns the data-format name.
func Name(rec Record) string {
	return orNull(String(rec, "name"))
}

// Description returns the description with line breaks replaced by sep.
func Description(rec Record, sep string) string {
	s, ok := String(rec, "description")
	if !ok {
		return Null
	}
	return orNull(replaceNewlines(s, sep), true)
}

// Authors joins creator names as "first last". A creator whose first and last
// names are both blank turns the whole field into Null. Organizations carry a
// single name, either per entry or in place of the sequence.
func Authors(rec Record) string {
	creators, ok := Lookup(rec, "creators")
	if !ok {
		return Null
	}
	if org, ok := creators.(map[string]any); ok {
		return orNull(String(org, "name"))
	}
	list, ok := creators.([]any)
	if !ok || len(list) == 0 {
		return Null
	}

	var names []string
	for _, c := range list {
		creator, ok := c.(map[string]any)
		if !ok {
			continue
		}
		first, hasFirst := String(creator, "firstName")
		last, hasLast := String(creator, "lastName")
		if !hasFirst && !hasLast {
			if org, ok := NonBlank(creator, "name"); ok {
				names = append(names, strings.TrimSpace(org))
			}
			continue
		}
		if strings.TrimSpace(first) == "" && strings.TrimSpace(last) == "" {
			return Null
		}
		names = append(names, strings.TrimSpace(strings.TrimSpace(first)+" "+strings.TrimSpace(last)))
	}
	if len(names) == 0 {
		return Null
	}
	return strings.Join(names, ListSeparator)
}

// ExtractDates maps distributions[].dates[] into the creation, modification
// and accessed slots. The first date seen for a slot wins.
func ExtractDates(rec Record) Dates {
	found := map[string]string{}
	distributions, _ := List(rec, "distributions")
	for _, d := range distributions {
		dates, _ := List(d, "dates")
		for _, entry := range dates {
			label, ok := String(entry, "type", "value")
			if !ok {
				continue
			}
			slot, ok := dateSlots[strings.ToLower(strings.TrimSpace(label))]
			if !ok {
				continue
			}
			if _, seen := found[slot]; seen {
				continue
			}
			if date, ok := NonBlank(entry, "date"); ok {
				found[slot] = date
			}
		}
	}
	return Dates{
		Creation:     orNull(found["creation"], true),
		Modification: orNull(found["modification"], true),
		Accessed:     orNull(found["accessed"], true),
	}
}

// Format joins distributions[0].formats.
func Format(rec Record) string {
	formats, ok := List(rec, "distributions", 0, "formats")
	if !ok {
		return Null
	}
	var out []string
	for _, f := range formats {
		if s, ok := f.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return Null
	}
	return strings.Join(out, ListSeparator)
}

// ConformsTo joins the name and identifier of distributions[0].conformsTo[0].
func ConformsTo(rec Record) string {
	standard, ok := Map(rec, "distributions", 0, "conformsTo", 0)
	if !ok {
		return Null
	}
	var parts []string
	if name, ok := NonBlank(standard, "name"); ok {
		parts = append(parts, name)
	}
	if id, ok := NonBlank(standard, "identifier", "identifier"); ok {
		parts = append(parts, id)
	}
	if len(parts) == 0 {
		return Null
	}
	return strings.Join(parts, ListSeparator)
}

// LandingPage returns distributions[0].access.landingPage.
func LandingPage(rec Record) string {
	return orNull(String(rec, "distributions", 0, "access", "landingPage"))
}

// AccessPage returns distributions[0].access.accessURL.
func AccessPage(rec Record) string {
	return orNull(String(rec, "distributions", 0, "access", "accessURL"))
}

// License returns licenses[0].name.
func License(rec Record) string {
	return orNull(String(rec, "licenses", 0, "name"))
}

// Version returns version.
func Version(rec Record) string {
	return orNull(String(rec, "version"))
}

// Type returns type.value.
func Type(rec Record) string {
	return orNull(String(rec, "type", "value"))
}

// TypeIRI returns type.valueIRI.
func TypeIRI(rec Record) string {
	return orNull(String(rec, "type", "valueIRI"))
}

// Geography joins spatialCoverage[].name.
func Geography(rec Record) string {
	regions, ok := List(rec, "spatialCoverage")
	if !ok {
		return Null
	}
	slots := make([]string, 0, len(regions))
	for _, region := range regions {
		slots = append(slots, orNull(String(region, "name")))
	}
	return joinSlots(slots)
}

// LocationCodes joins spatialCoverage[].identifier.identifier. A URL-form
// identifier keeps only the text after its first "=".
func LocationCodes(rec Record) string {
	regions, ok := List(rec, "spatialCoverage")
	if !ok {
		return Null
	}
	slots := make([]string, 0, len(regions))
	for _, region := range regions {
		id, ok := NonBlank(region, "identifier", "identifier")
		if !ok {
			slots = append(slots, Null)
			continue
		}
		slots = append(slots, orNull(LocationCode(id), true))
	}
	return joinSlots(slots)
}

// LocationCode reduces a URL-form location identifier to its query value.
func LocationCode(id string) string {
	if !strings.Contains(id, "http") {
		return id
	}
	if _, value, found := strings.Cut(id, "="); found {
		return value
	}
	return id
}

// ExtractISOCodes collects the three ISO 3166 codes per region from
// relatedIdentifiers, or alternateIdentifiers on older records.
func ExtractISOCodes(rec Record) ISOCodes {
	regions, ok := List(rec, "spatialCoverage")
	if !ok {
		return ISOCodes{ISO3166: Null, ISO3166Numeric: Null, ISO3166Alpha3: Null}
	}

	var iso, numeric, alpha3 []string
	for _, region := range regions {
		ids, ok := List(region, "relatedIdentifiers")
		if !ok || len(ids) == 0 {
			ids, _ = List(region, "alternateIdentifiers")
		}
		codes := map[string]string{}
		for _, entry := range ids {
			source, ok := String(entry, "identifierSource")
			if !ok {
				continue
			}
			label := strings.TrimSpace(source)
			if label == iso3166NumericAlias {
				label = ISO3166NumericLabel
			}
			if _, seen := codes[label]; seen {
				continue
			}
			if code, ok := NonBlank(entry, "identifier"); ok {
				codes[label] = code
			}
		}
		iso = append(iso, orNull(codes[ISO3166Label], true))
		numeric = append(numeric, orNull(codes[ISO3166NumericLabel], true))
		alpha3 = append(alpha3, orNull(codes[ISO3166Alpha3Label], true))
	}

	return ISOCodes{
		ISO3166:        joinSlots(iso),
		ISO3166Numeric: joinSlots(numeric),
		ISO3166Alpha3:  joinSlots(alpha3),
	}
}

// Disease returns the name of isAbout[0] when it is a disease-ontology term.
// Later entries are not inspected.
func Disease(rec Record) string {
	about, ok := List(rec, "isAbout")
	if !ok || len(about) == 0 {
		return Null
	}
	first := about[0]
	source, ok := String(first, "identifier", "identifierSource")
	if !ok || source != DiseaseOntologySource {
		return Null
	}
	return orNull(String(first, "name"))
}

// ExtractExtraProperties reads the human-readable spec, machine-readable spec
// and validator categories. The first matching category wins.
func ExtractExtraProperties(rec Record) ExtraProperties {
	props := ExtraProperties{
		HumanReadable:   SpecValue{Value: Null, ValueIRI: Null},
		MachineReadable: SpecValue{Value: Null, ValueIRI: Null},
		Validator:       SpecValue{Value: Null, ValueIRI: Null},
	}
	entries, _ := List(rec, "extraProperties")

	var seenHuman, seenMachine, seenValidator bool
	for _, entry := range entries {
		category, ok := String(entry, "category")
		if !ok {
			continue
		}
		category = strings.ToLower(category)
		value := SpecValue{
			Value:    orNull(String(entry, "values", 0, "value")),
			ValueIRI: orNull(String(entry, "values", 0, "valueIRI")),
		}
		switch {
		case strings.Contains(category, "human-readable") && !seenHuman:
			props.HumanReadable, seenHuman = value, true
		case strings.Contains(category, "machine-readable") && !seenMachine:
			props.MachineReadable, seenMachine = value, true
		case strings.Contains(category, "validator") && !seenValidator:
			props.Validator, seenValidator = value, true
		}
	}
	return props
}

// ExtractStorageFlags inspects storedIn.name, which may be a single
// repository or a sequence of them.
func ExtractStorageFlags(rec Record) StorageFlags {
	stored, ok := Lookup(rec, "storedIn")
	if !ok {
		return StorageFlags{DigitalCommons: Null, Zenodo: Null}
	}

	var names []string
	switch v := stored.(type) {
	case map[string]any:
		if name, ok := NonBlank(v, "name"); ok {
			names = append(names, name)
		}
	case []any:
		for _, repo := range v {
			if name, ok := NonBlank(repo, "name"); ok {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return StorageFlags{DigitalCommons: Null, Zenodo: Null}
	}

	return StorageFlags{
		DigitalCommons: flag(names, DigitalCommonsRepository),
		Zenodo:         flag(names, ZenodoRepository),
	}
}

func flag(names []string, repository string) string {
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), strings.ToLower(repository)) {
			return "TRUE"
		}
	}
	return "FALSE"
}

// replaceNewlines swaps every line break in s for sep.
func replaceNewlines(s, sep string) string {
	s = strings.ReplaceAll(s, "\r\n", sep)
	s = strings.ReplaceAll(s, "\n", sep)
	return strings.ReplaceAll(s, "\r", sep)
}
