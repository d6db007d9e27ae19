package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ForgeError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(reason string, cause error) *ForgeError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("reason", reason)
}

// Input parsing errors

func MalformedXML(path string, cause error) *ForgeError {
	return Wrap(cause, CategoryParse, SeverityError, "input file is not parsable as XML").
		WithContext("path", path)
}

func InputNotFound(path string, cause error) *ForgeError {
	return Wrap(cause, CategoryParse, SeverityError, "input file not found").
		WithContext("path", path)
}

func MalformedInput(path string, cause error) *ForgeError {
	return Wrap(cause, CategoryParse, SeverityError, "input file is not parsable").
		WithContext("path", path)
}

// Render errors

func RenderFailed(projection string, cause error) *ForgeError {
	return Wrap(cause, CategoryRender, SeverityFatal, "projection rendering failed").
		WithContext("projection", projection)
}

func WriteFailed(path string, cause error) *ForgeError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output write failed").
		WithContext("path", path)
}

// Validation errors

func ValidationFailed(check, reason string) *ForgeError {
	return New(CategoryValidation, SeverityError, "validation check failed").
		WithContext("check", check).
		WithContext("reason", reason)
}

// Run store errors

func RunStoreError(operation string, cause error) *ForgeError {
	return Wrap(cause, CategoryRunStore, SeverityError, "run store operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *ForgeError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
