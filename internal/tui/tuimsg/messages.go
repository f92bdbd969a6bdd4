// Package tuimsg holds the messages scenes send to the root model.
package tuimsg

import (
	"github.com/taxlab/ktax/internal/domain"
)

// CategorySelectedMsg opens the form for a category
type CategorySelectedMsg struct {
	Category domain.Category
}

// SubmitMsg asks the root model to calculate a request
type SubmitMsg struct {
	Request domain.Request
}

// BackMsg returns to the previous scene
type BackMsg struct{}
