package template

// Delimiter separates lines. Template text is split on this exact string;
// carriage returns are ordinary text.
const Delimiter = "\n"

// Literal text of the marker tags.
const (
	OpenText      = "<!--"
	CloseText     = "-->"
	OptionalText  = "(optional)"
	ParameterText = "(param)"
	ReferenceText = "(ref)"
)

// Primitive patterns of the marker grammar.
var (
	Open         = Literal(OpenText)
	Close        = Literal(CloseText)
	Spaces       = Raw(` *`)
	Name         = Raw(`[\p{L}\p{N}_]+`)
	OptionalTag  = Literal(OptionalText)
	ParameterTag = Literal(ParameterText)
	ReferenceTag = Literal(ReferenceText)
)

// Capture group names used by the marker pattern.
const (
	groupOptional = "optional"
	groupKind     = "kind"
	groupName     = "name"
)

// Marker is the full expression marker:
//
//	Open Spaces [OptionalTag] (ParameterTag | ReferenceTag) Name Spaces Close
var Marker = Sequence(
	Open,
	Spaces,
	OptionalTag.Named(groupOptional).Optional(),
	Alternate(ParameterTag, ReferenceTag).Named(groupKind),
	Name.Named(groupName),
	Spaces,
	Close,
)

var (
	markerSearch = Marker.Compile()
	markerExact  = Marker.Exact()
	nameExact    = Name.Exact()

	indexOptional = markerSearch.SubexpIndex(groupOptional)
	indexKind     = markerSearch.SubexpIndex(groupKind)
	indexName     = markerSearch.SubexpIndex(groupName)
)

// IsName reports whether s is a legal parameter or template name.
func IsName(s string) bool { return nameExact.MatchString(s) }
