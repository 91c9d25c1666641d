package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

const maxPatchBody = 1 << 20

// bindPatch decodes a partial update into dst after checking that every key of
// the JSON object is one of allowed. Unknown keys reject the whole update.
func bindPatch(c echo.Context, allowed []string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPatchBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	for key := range fields {
		if !slices.Contains(allowed, key) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid updates")
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}
