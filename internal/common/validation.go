package common

import (
	"fmt"
	"slices"

	"atscore/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats, or
// against every registered format when none are configured
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		supportedFormats = formatters.GlobalRegistry.GetSupportedFormats()
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
