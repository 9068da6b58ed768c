package validator

import (
	"strings"

	"github.com/campusevents/backend/internal/domain/dto"
)

// Blast validates a blast form and returns the trimmed content.
func Blast(form dto.BlastForm) (string, error) {
	form.Content = strings.TrimSpace(form.Content)
	if err := Struct(form); err != nil {
		return "", err
	}
	return form.Content, nil
}
