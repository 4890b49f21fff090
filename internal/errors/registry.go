package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://rrbuilder.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Tree Errors (R001-R099)
	// ============================================

	"R001": {
		Category:   CategoryRoute,
		Message:    "Invalid path segment",
		Suggestion: "Segments may not contain backslashes, NUL bytes, malformed %XX escapes or '.'/'..' pieces, and '*' must come last",
		DocURL:     docBase + "R001",
	},
	"R002": {
		Category:   CategoryRoute,
		Message:    "Missing component file",
		Suggestion: "Every route, index and layout needs a file",
		DocURL:     docBase + "R002",
	},
	"R003": {
		Category:   CategoryRoute,
		Message:    "Index route with a path segment",
		Suggestion: "Index routes render at their parent's path; move the segment to a route or layout",
		DocURL:     docBase + "R003",
	},
	"R004": {
		Category:   CategoryRoute,
		Message:    "Index route with children",
		Suggestion: "Turn the index into a route or layout to nest children",
		DocURL:     docBase + "R004",
	},
	"R005": {
		Category:   CategoryRoute,
		Message:    "Children already set",
		Suggestion: "Pass all children in a single children list",
		DocURL:     docBase + "R005",
	},
	"R006": {
		Category: CategoryRoute,
		Message:  "Option does not apply to this node",
		DocURL:   docBase + "R006",
	},
	"R007": {
		Category: CategoryRoute,
		Message:  "Invalid route node",
		DocURL:   docBase + "R007",
	},
	"R010": {
		Category:   CategoryRoute,
		Message:    "Route resolves to an empty path",
		Suggestion: "Use an index route for the default child of a path",
		DocURL:     docBase + "R010",
	},
	"R011": {
		Category:   CategoryRoute,
		Message:    "Duplicate route id",
		Suggestion: "Give each route a distinct id, or drop the id to derive one from the path",
		DocURL:     docBase + "R011",
	},
	"R012": {
		Category:   CategoryRoute,
		Message:    "Duplicate route path",
		Suggestion: "Remove one of the routes, or set pathConflict to \"allow\"",
		DocURL:     docBase + "R012",
	},
	"R099": {
		Category: CategoryRoute,
		Message:  "Route tree error",
		DocURL:   docBase + "R099",
	},

	// ============================================
	// Manifest Errors (M001-M099)
	// ============================================

	"M001": {
		Category:   CategoryManifest,
		Message:    "Manifest parse failed",
		Suggestion: "Check that the manifest is valid YAML or JSON",
		DocURL:     docBase + "M001",
	},
	"M002": {
		Category:   CategoryManifest,
		Message:    "Unknown manifest key",
		Suggestion: "Valid keys are route, index, layout, prefix, file, path, id and children",
		DocURL:     docBase + "M002",
	},
	"M003": {
		Category:   CategoryManifest,
		Message:    "Missing route kind",
		Suggestion: "Each entry needs exactly one of route, index, layout or prefix",
		DocURL:     docBase + "M003",
	},
	"M004": {
		Category:   CategoryManifest,
		Message:    "Multiple route kinds",
		Suggestion: "Each entry needs exactly one of route, index, layout or prefix",
		DocURL:     docBase + "M004",
	},
	"M005": {
		Category: CategoryManifest,
		Message:  "Key not valid for this route kind",
		DocURL:   docBase + "M005",
	},
	"M006": {
		Category:   CategoryManifest,
		Message:    "Manifest has no routes",
		Suggestion: "Add a top-level routes: list",
		DocURL:     docBase + "M006",
	},

	// ============================================
	// Source Errors (S001-S099)
	// ============================================

	"S001": {
		Category:   CategorySource,
		Message:    "Manifest not found",
		Suggestion: "Check the manifest setting in rrbuilder.json or pass --manifest",
		DocURL:     docBase + "S001",
	},
	"S002": {
		Category: CategorySource,
		Message:  "Manifest read failed",
		DocURL:   docBase + "S002",
	},
	"S003": {
		Category:   CategorySource,
		Message:    "Invalid manifest location",
		Suggestion: "Use a file path or s3://bucket/key",
		DocURL:     docBase + "S003",
	},
	"S004": {
		Category: CategorySource,
		Message:  "S3 request failed",
		DocURL:   docBase + "S004",
	},

	// ============================================
	// Config Errors (C120-C149)
	// ============================================

	"C120": {
		Category:   CategoryConfig,
		Message:    "Config file error",
		Suggestion: "Check that the config file is valid JSON or TOML",
		DocURL:     docBase + "C120",
	},
	"C121": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		DocURL:   docBase + "C121",
	},
	"C141": {
		Category:   CategoryConfig,
		Message:    "No config found",
		Suggestion: "Run 'rrbuilder init' or create rrbuilder.json manually",
		DocURL:     docBase + "C141",
	},
	"C145": {
		Category:   CategoryConfig,
		Message:    "Unknown template",
		Suggestion: "Run 'rrbuilder init --list' to see the available templates",
		DocURL:     docBase + "C145",
	},

	// ============================================
	// Output Errors (O001-O099)
	// ============================================

	"O001": {
		Category: CategoryOutput,
		Message:  "Output write failed",
		DocURL:   docBase + "O001",
	},
	"O002": {
		Category:   CategoryOutput,
		Message:    "Unsupported encoding",
		Suggestion: "Use json or yaml",
		DocURL:     docBase + "O002",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
