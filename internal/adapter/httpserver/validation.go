package httpserver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		_ = vld.RegisterValidation("output_type", func(fl validator.FieldLevel) bool {
			return domain.OutputType(fl.Field().String()).Valid()
		})
	})
	return vld
}

// researchRequest is the body of POST /research. APIKey is accepted for
// compatibility with older front-ends and ignored.
type researchRequest struct {
	Prompt        string `json:"prompt" validate:"required,max=20000"`
	Type          string `json:"type" validate:"omitempty,output_type"`
	SelectedModel string `json:"selectedModel" validate:"omitempty,max=100"`
	Provider      string `json:"provider" validate:"omitempty,oneof=gemini deepseek"`
	APIKey        string `json:"apiKey"`
}

type switchKeyRequest struct {
	KeyIndex *int `json:"keyIndex" validate:"required"`
}

// validateStruct runs struct validation and folds failures into ErrInvalidArgument.
func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, strings.ToLower(fe.Field())+":"+fe.Tag())
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(fields, ","))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
}
