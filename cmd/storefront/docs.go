package main

// @title Storefront API
// @version 1.0
// @description Client session and state engine for the storefront: auth session, cart, favorites and guarded checkout.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Session endpoints

// @tag.name Cart
// @tag.description Shopping cart endpoints

// @tag.name Favorites
// @tag.description Favorites list endpoints

// @tag.name Catalog
// @tag.description Product catalog endpoints

// @tag.name Checkout
// @tag.description Guarded checkout flow endpoints

// @tag.name Health
// @tag.description Health check endpoints
