package content

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// requiredKeys lists the JSON keys each payload type must carry. Presence is
// checked before decoding because a missing key and a zero value look the
// same after unmarshalling.
var requiredKeys = map[domain.ContentType][]string{
	domain.ContentText:         {"content"},
	domain.ContentIngredients:  {"items"},
	domain.ContentRecipeName:   {"name"},
	domain.ContentSessionName:  {"name"},
	domain.ContentRecipe:       {"recipe_id", "name", "ingredients", "steps"},
	domain.ContentRecipeUpdate: {"action"},
	domain.ContentTimer:        {"duration", "label"},
	domain.ContentSystem:       {"message"},
}

// Validate checks that a decoded payload is well formed for its type.
func Validate(c domain.Content) error {
	var err error
	switch v := c.(type) {
	case domain.Text:
		err = nil
	case domain.Ingredients:
		err = validation.ValidateStruct(&v,
			validation.Field(&v.Items, validation.NotNil, validation.Each(validation.By(validIngredient))),
			validation.Field(&v.Action, validation.In(domain.IngredientsSet, domain.IngredientsUpdate)),
		)
	case domain.RecipeName:
		err = validation.ValidateStruct(&v, validation.Field(&v.Name, validation.Required))
	case domain.SessionName:
		err = validation.ValidateStruct(&v, validation.Field(&v.Name, validation.Required))
	case domain.RecipeContent:
		err = validation.ValidateStruct(&v,
			validation.Field(&v.Name, validation.Required),
			validation.Field(&v.Ingredients, validation.Each(validation.By(validIngredient))),
			validation.Field(&v.Steps, validation.Each(validation.By(validStep))),
		)
	case domain.RecipeUpdate:
		err = validation.ValidateStruct(&v,
			validation.Field(&v.Action,
				validation.Required,
				validation.In(domain.RecipeSetMetadata, domain.RecipeSetIngredients, domain.RecipeSetSteps),
			),
			validation.Field(&v.Ingredients, validation.Each(validation.By(validIngredient))),
			validation.Field(&v.Steps, validation.Each(validation.By(validStep))),
		)
	case domain.Timer:
		err = validation.ValidateStruct(&v,
			validation.Field(&v.Duration, validation.Required, validation.Min(1)),
			validation.Field(&v.Label, validation.Required),
		)
	case domain.System:
		err = validation.ValidateStruct(&v,
			validation.Field(&v.Status, validation.In(domain.SystemConnected, domain.SystemError, domain.SystemThinking)),
		)
	case nil:
		return fmt.Errorf("%w: nil content", domain.ErrInvalidContent)
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnknownContent, c)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidContent, c.Type(), err)
	}
	return nil
}

func validIngredient(value interface{}) error {
	ing, ok := value.(domain.Ingredient)
	if !ok {
		return errors.New("must be an ingredient object")
	}
	if ing.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func validStep(value interface{}) error {
	step, ok := value.(domain.RecipeStep)
	if !ok {
		return errors.New("must be a step")
	}
	if step.Instruction == "" {
		return errors.New("instruction is required")
	}
	return nil
}
