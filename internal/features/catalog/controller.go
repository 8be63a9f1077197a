package catalog

import (
	"go-broker/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type CatalogController struct {
	Catalog Catalog
}

func NewCatalogController(c Catalog) *CatalogController {
	return &CatalogController{Catalog: c}
}

type operatorInfo struct {
	FilterID  string     `json:"filter_id"`
	Operators []Operator `json:"operators"`
}

type reportTypeResponse struct {
	*ReportDataSource
	DefaultColumns []string       `json:"default_columns"`
	Operators      []operatorInfo `json:"operators"`
}

func describe(ds *ReportDataSource) reportTypeResponse {
	resp := reportTypeResponse{ReportDataSource: ds, DefaultColumns: ds.DefaultColumns()}
	for _, f := range ds.Filters {
		resp.Operators = append(resp.Operators, operatorInfo{FilterID: f.ID, Operators: f.Type.Operators()})
	}
	return resp
}

// List godoc
// @Summary List report types
// @Tags catalog
// @Produce json
// @Router /api/report-types [get]
func (c *CatalogController) List(ctx *fiber.Ctx) error {
	sources := c.Catalog.List()
	out := make([]reportTypeResponse, 0, len(sources))
	for _, ds := range sources {
		out = append(out, describe(ds))
	}
	return ctx.JSON(out)
}

// Get godoc
// @Summary Get a report type with its columns and filters
// @Tags catalog
// @Produce json
// @Param id path string true "Report type id"
// @Router /api/report-types/{id} [get]
func (c *CatalogController) Get(ctx *fiber.Ctx) error {
	ds, err := c.Catalog.Get(ctx.Params("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(describe(ds))
}
