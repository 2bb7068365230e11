package providers

// ParseAndValidate exposes structured output validation to external tests.
var ParseAndValidate = parseAndValidate
