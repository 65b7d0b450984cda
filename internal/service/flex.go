package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tastoria/backend/internal/model"
)

// FlexInt decodes a JSON number or a numeric string. Generation output is
// inconsistent about which one it emits.
type FlexInt struct {
	Value int
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = int(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		// Tolerate suffixes like "15 minutes": take the leading integer.
		for i, r := range str {
			if r < '0' || r > '9' {
				str = str[:i]
				break
			}
		}
		if str == "" {
			f.Value = 0
			return nil
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", str)
		}
		f.Value = v
		return nil
	}

	return fmt.Errorf("invalid number format")
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// FlexIngredient decodes an ingredient given either as a bare string
// ("2 cups flour") or as a structured object.
type FlexIngredient struct {
	model.Ingredient
}

func (f *FlexIngredient) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f.Ingredient = model.Ingredient{Name: strings.TrimSpace(str), Category: "other"}
		return nil
	}

	var ing model.Ingredient
	if err := json.Unmarshal(data, &ing); err != nil {
		return err
	}
	if !model.IngredientCategories.Valid(ing.Category) {
		ing.Category = "other"
	}
	f.Ingredient = ing
	return nil
}

func (f FlexIngredient) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Ingredient)
}
