// Package graphql exposes the read-only catalog over GraphQL. Resolvers go
// through the same ProductService as the REST controllers, so caching and
// filter normalisation are shared.
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	gqlhttp "github.com/shashiranjanraj/shopease/pkg/graphql"
)

var specType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Spec",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).ID, nil
			},
		},
		"name":           &graphql.Field{Type: graphql.String},
		"description":    &graphql.Field{Type: graphql.String},
		"price":          &graphql.Field{Type: graphql.Float},
		"originalPrice":  &graphql.Field{Type: graphql.Float},
		"image":          &graphql.Field{Type: graphql.String},
		"images":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"category":       &graphql.Field{Type: graphql.String},
		"brand":          &graphql.Field{Type: graphql.String},
		"stock":          &graphql.Field{Type: graphql.Int},
		"rating":         &graphql.Field{Type: graphql.Float},
		"features":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"specifications": &graphql.Field{Type: graphql.NewList(specType)},
		"createdAt":      &graphql.Field{Type: graphql.DateTime},
	},
})

var paginationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Pagination",
	Fields: graphql.Fields{
		"page":       &graphql.Field{Type: graphql.Int},
		"limit":      &graphql.Field{Type: graphql.Int},
		"total":      &graphql.Field{Type: graphql.Int},
		"totalPages": &graphql.Field{Type: graphql.Int},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"items":      &graphql.Field{Type: graphql.NewList(productType)},
		"pagination": &graphql.Field{Type: paginationType},
	},
})

var facetsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Facets",
	Fields: graphql.Fields{
		"categories": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"brands":     &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// Query builds the root query object over products.
func Query(products *services.ProductService) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"brand":    &graphql.ArgumentConfig{Type: graphql.String},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"minPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"maxPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"inStock":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: repositories.SortNewest},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 8},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return products.List(p.Context, filterFromArgs(p.Args))
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					prod, err := products.Get(p.Context, id)
					if errors.Is(err, repositories.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return *prod, nil
				},
			},
			"facets": &graphql.Field{
				Type: facetsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return products.Facets(p.Context)
				},
			},
		},
	})
}

func filterFromArgs(args map[string]interface{}) repositories.ProductFilter {
	f := repositories.ProductFilter{}
	f.Category, _ = args["category"].(string)
	f.Brand, _ = args["brand"].(string)
	f.Search, _ = args["search"].(string)
	f.Sort, _ = args["sort"].(string)
	f.InStock, _ = args["inStock"].(bool)
	f.Page, _ = args["page"].(int)
	f.Limit, _ = args["limit"].(int)
	if v, ok := args["minPrice"].(float64); ok {
		f.MinPrice = &v
	}
	if v, ok := args["maxPrice"].(float64); ok {
		f.MaxPrice = &v
	}
	return f
}

// Schema builds the catalog schema.
func Schema(products *services.ProductService) (graphql.Schema, error) {
	return gqlhttp.NewSchema(Query(products))
}
