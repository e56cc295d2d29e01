package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// filterFromQuery parses the catalog query string. Malformed numbers fail.
func filterFromQuery(c *ctx.Context) (repositories.ProductFilter, error) {
	f := repositories.ProductFilter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	var err error
	if f.MinPrice, err = c.QueryFloat("minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = c.QueryFloat("maxPrice"); err != nil {
		return f, err
	}
	if f.InStock, err = c.QueryBool("inStock"); err != nil {
		return f, err
	}
	if f.Page, err = c.QueryInt("page", 1); err != nil {
		return f, err
	}
	if f.Limit, err = c.QueryInt("limit", 8); err != nil {
		return f, err
	}
	return f, nil
}

func (ctl *ProductController) Index(c *ctx.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		badQuery(c, err)
		return
	}
	page, err := ctl.products.List(c.Context(), f)
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Paginated(page.Items, page.Pagination)
}

func (ctl *ProductController) Facets(c *ctx.Context) {
	f, err := ctl.products.Facets(c.Context())
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(f)
}

func (ctl *ProductController) Show(c *ctx.Context) {
	p, err := ctl.products.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(p)
}

func (ctl *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := ctl.products.Create(c.Context(), in)
	if err != nil {
		fail(c, err, "Create failed")
		return
	}
	c.Created("Created", p)
}

func (ctl *ProductController) Update(c *ctx.Context) {
	var in services.ProductPatch
	if !c.BindJSON(&in) {
		return
	}
	p, err := ctl.products.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err, "Update failed")
		return
	}
	c.Message("Updated", p)
}

func (ctl *ProductController) Destroy(c *ctx.Context) {
	if err := ctl.products.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err, "Delete failed")
		return
	}
	c.Message("Deleted", nil)
}

// UploadImage accepts a multipart form with an "image" file part.
func (ctl *ProductController) UploadImage(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, services.MaxImageBytes+1<<20)
	file, _, err := c.R.FormFile("image")
	if err != nil {
		c.ValidationError(map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	p, err := ctl.products.UploadImage(c.Context(), c.Param("id"), file)
	if err != nil {
		fail(c, err, "Upload failed")
		return
	}
	c.Message("Image uploaded", p)
}
