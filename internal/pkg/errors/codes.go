package errors

// Error code constants. Errors carry code + params; messages stay short
// and English, report rendering owns user-facing text.

// Input loading error codes.
const (
	CodeRecipeLoadFailed   = "RECIPE_LOAD_FAILED"
	CodeManifestLoadFailed = "MANIFEST_LOAD_FAILED"
)

// Policy error codes.
const (
	CodePolicyLoadFailed = "POLICY_LOAD_FAILED"
	CodePolicyInvalid    = "POLICY_INVALID"
	CodeUnknownRule      = "UNKNOWN_RULE"
	CodeRuleMisconfig    = "RULE_MISCONFIGURED"
)

// Process error codes.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeUsage         = "USAGE_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// Convenience constructors using predefined codes.

// ErrRecipeLoadFailed wraps a recipe read failure.
func ErrRecipeLoadFailed(path string, err error) *AppError {
	return Wrap(err, CodeRecipeLoadFailed, "cannot load build recipe", ExitError).
		WithParams(map[string]interface{}{"path": path})
}

// ErrManifestLoadFailed wraps a dependency manifest read failure.
func ErrManifestLoadFailed(path string, err error) *AppError {
	return Wrap(err, CodeManifestLoadFailed, "cannot load dependency manifest", ExitError).
		WithParams(map[string]interface{}{"path": path})
}

// ErrPolicyLoadFailed wraps a policy file read or decode failure.
func ErrPolicyLoadFailed(path string, err error) *AppError {
	return Wrap(err, CodePolicyLoadFailed, "cannot load policy", ExitError).
		WithParams(map[string]interface{}{"path": path})
}

// ErrUsage reports a bad invocation.
func ErrUsage(message string) *AppError {
	return New(CodeUsage, message, ExitError)
}
