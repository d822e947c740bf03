package rest

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/labstack/echo/v4"

	"catalog-engine/domain"
)

// filterKeyPattern matches the filter[dimension][] query convention, with
// or without the trailing array brackets.
var filterKeyPattern = regexp.MustCompile(`^filter\[([^\]]+)\](\[\])?$`)

// parseSelection extracts the filter selection from query parameters and
// validates it. Malformed selections are rejected with a 400 before they
// reach the engine.
func parseSelection(values url.Values) (domain.FilterSelection, error) {
	selection := make(domain.FilterSelection)
	for key, list := range values {
		match := filterKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		dimension := match[1]
		for _, value := range list {
			if value == "" {
				continue
			}
			selection[dimension] = append(selection[dimension], value)
		}
	}

	if err := domain.ValidateSelection(selection); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return selection, nil
}
