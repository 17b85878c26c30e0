package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	// Swagger UI
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListProducts godoc
// @Summary List catalog products
// @Description Get catalog products with optional free-text search and pagination
// @Tags Catalog
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Param search query string false "Free-text filter on name and description"
// @Success 200 {object} object{success=bool,data=object{products=array,count=int,search=string}}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/products [get]
func (h *CatalogHandler) ListProductsDoc() {}

// GetProduct godoc
// @Summary Get product by ID
// @Description Get a specific catalog product by its ID
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id} [get]
func (h *CatalogHandler) GetProductDoc() {}

// CreateProduct godoc
// @Summary Create a new product
// @Description Create a new catalog product (Admin only)
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,price=number,stock=int,category=string,sku=string,image_url=string,is_active=bool} true "Product data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/products [post]
func (h *CatalogHandler) CreateProductDoc() {}

// UpdateProduct godoc
// @Summary Update a product
// @Description Update an existing catalog product (Admin only)
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body object{name=string,description=string,price=number,stock=int,category=string,image_url=string,is_active=bool} true "Product data"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/products/{id} [put]
func (h *CatalogHandler) UpdateProductDoc() {}

// DeleteProduct godoc
// @Summary Delete a product
// @Description Delete a catalog product by ID (Admin only)
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/products/{id} [delete]
func (h *CatalogHandler) DeleteProductDoc() {}
