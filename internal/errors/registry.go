package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// Error codes raised by the runtime.
const (
	CodeMalformedMarkup   = "E001"
	CodeSlotMismatch      = "E002"
	CodeShapeDrift        = "E003"
	CodeNotMounted        = "E004"
	CodeUnknownEvent      = "E005"
	CodeNoHost            = "E006"
	CodeMountPointMissing = "E007"

	CodeConfigNotFound = "E060"
	CodeConfigParse    = "E061"
	CodeConfigInvalid  = "E062"

	CodeInvalidArgument = "E080"
	CodeServeFailed     = "E081"

	CodeSnapshotWrite    = "E100"
	CodeSnapshotNotFound = "E101"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render and reconcile errors (E001-E039)
	// ============================================

	CodeMalformedMarkup: {
		Category:   CategoryRender,
		Message:    "Markup does not parse into a single root element",
		Suggestion: "Return exactly one root element from Render.",
	},
	CodeSlotMismatch: {
		Category:   CategoryRender,
		Message:    "Placeholder count does not match attached children",
		Suggestion: "Inline the node returned by Attach exactly once for every attached child.",
	},
	CodeShapeDrift: {
		Category:   CategoryReconcile,
		Message:    "Fresh and live structures have diverged",
		Suggestion: "Keep the element structure of a render stable; only text and list tails may change.",
	},
	CodeNotMounted: {
		Category:   CategoryRuntime,
		Message:    "Component is not mounted",
		Suggestion: "Call Mount before delivering change notifications.",
	},
	CodeUnknownEvent: {
		Category: CategoryRuntime,
		Message:  "No handler bound for event",
	},
	CodeNoHost: {
		Category:   CategoryRuntime,
		Message:    "Rendering environment has no structural host",
		Suggestion: "Pass an Env created with component.NewEnv(dom.NewDocument()).",
	},
	CodeMountPointMissing: {
		Category:   CategoryRuntime,
		Message:    "Mount point not found in host document",
		Suggestion: `Add an element with the mount id, e.g. <div id="main"></div>.`,
	},

	// ============================================
	// Config errors (E060-E079)
	// ============================================

	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create inplace.json in the project root or pass --config.",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Configuration is invalid",
	},

	// ============================================
	// CLI errors (E080-E099)
	// ============================================

	CodeInvalidArgument: {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	CodeServeFailed: {
		Category: CategoryCLI,
		Message:  "Preview server failed",
	},

	// ============================================
	// Storage errors (E100-E119)
	// ============================================

	CodeSnapshotWrite: {
		Category: CategoryStorage,
		Message:  "Snapshot could not be written",
	},
	CodeSnapshotNotFound: {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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
