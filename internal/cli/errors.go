package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transferdesk/platform/internal/domain"
)

// describe flattens field validation errors into one line for the terminal.
func describe(err error) error {
	appErr, ok := domain.AsAppError(err)
	if !ok || len(appErr.Fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(appErr.Fields))
	for k := range appErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+appErr.Fields[k])
	}
	return fmt.Errorf("%s (%s)", appErr.Message, strings.Join(parts, "; "))
}
