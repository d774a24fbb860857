package help

// ColdstartYAML is printed by 'dats quickstart'.
const ColdstartYAML = `# dats - quick start
tool: dats
purpose: "Flatten DATS metadata records into tab-delimited bucket files and detect drift"

commands:
  export:
    what: "Fetch records (api or dir), assemble rows, route them into buckets, write TSV"
    examples:
      - 'dats export --ids "doi:10.5281/zenodo.1,doi:10.5281/zenodo.2"'
      - 'dats export --ids-file ids.txt --profile dataset'
      - 'dats export --source dir --dir ./records --out-dir ./exports'
      - 'cat ids.txt | dats export --ids-file -'
    outputs:
      - "<out_dir>/<bucket path>       (created, or appended to when the header matches)"
      - "<out_dir>/manifest-<ts>.yaml  (per-run summary: buckets, rows, failures)"
  check:
    what: "Re-fetch every identifier in the newest export and diff it column by column"
    examples:
      - 'dats check'
      - 'dats check --input exports/dats-info --match dats-info'
      - 'dats check --input exports/dats-info/dats-info.txt --format yaml'
    exit_codes: "0=no drift, 1=drift found, 2=could not run"
  runs:
    what: "Inspect the audit log of earlier runs"
    examples:
      - 'dats runs list --limit 5'
      - 'dats runs show'
      - 'dats runs show 0f6c1a2b --failed-only'
  columns:
    what: "Print the column reference for a profile"
    examples:
      - 'dats columns --profile data-format'

profiles:
  dataset: "records with a title; identifier column datasetIdentifier"
  data-format: "records without a title; identifier column identifier"
  auto: "pick the profile per record (default)"

values:
  missing: "null"
  lists: "joined with '; ' (dataset) or ', ' (data-format)"
  newlines: "replaced by the list separator"

config:
  files: "dats.yaml, then dats.local.yaml overrides it"
  flags_override: [api-url, out-dir, encoding, timeout]
  routing_fields:
    "col:<column>": "value of an assembled column"
    "raw:<path>": "value at a record path, [] fans out over lists"
  routing_ops: [equals, contains, not_null, one_of]

error_behavior:
  - "Unreadable or unfetchable records are logged, counted and listed in the manifest"
  - "--fail-fast stops at the first failure and writes nothing"
  - "A header mismatch on an existing bucket file aborts the run"
`
