package service

import (
	"fmt"

	"github.com/avdeyev/sheetfin/models"
	"gopkg.in/yaml.v3"
)

// EncodeCategories renders a category set as the YAML document users edit
// and import back. Round-trips with [DecodeCategories].
func EncodeCategories(set models.CategorySet) ([]byte, error) {
	data, err := yaml.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encoding category set: %w", err)
	}
	return data, nil
}

// DecodeCategories parses a user-supplied YAML document into a category set.
// Unparsable input yields ErrMalformedCategorySet; structural validation is
// the resolver's job.
func DecodeCategories(data []byte) (models.CategorySet, error) {
	var set models.CategorySet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return models.CategorySet{}, fmt.Errorf("%w: %s", ErrMalformedCategorySet, err)
	}
	return set, nil
}
