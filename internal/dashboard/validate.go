package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("elementtype", func(fl validator.FieldLevel) bool {
		return ElementType(fl.Field().String()).Known()
	})
	return v
}

// Validate reports structural problems with a document, such as an element
// of unknown type or a rectangle that leaves the canvas.
func Validate(d Dashboard) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New("invalid dashboard: " + strings.Join(msgs, "; "))
}
