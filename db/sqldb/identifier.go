package sqldb

import "regexp"

// IdentifierRegexp matches plain or schema-qualified SQL identifiers, e.g. "app.doc_ref_counters".
var IdentifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
