package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{query: "", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
		{query: "?page=3&limit=10", want: Pagination{Page: 3, Limit: 10, Offset: 20}},
		{query: "?page=0&limit=-4", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
		{query: "?page=x&limit=y", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
		{query: "?limit=5000", want: Pagination{Page: 1, Limit: MaxPageSize, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Pagination
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = GetPagination(c, 1, 20)
				return c.SendStatus(fiber.StatusNoContent)
			})

			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPagination_SetTotal(t *testing.T) {
	p := Pagination{Page: 1, Limit: 10}
	p.SetTotal(21)
	assert.Equal(t, 3, p.LastPage)

	p.SetTotal(0)
	assert.Equal(t, 0, p.LastPage)
}
