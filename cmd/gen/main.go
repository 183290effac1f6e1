package main

import (
	"storefront/internal/infra/persistence/model"

	"gorm.io/gen"
)

// gen writes typed query helpers for the Postgres models into
// internal/infra/persistence/postgres/query.
func main() {
	models := []any{
		model.UserModel{},
		model.CategoryModel{},
		model.ProductModel{},
		model.CheckoutModel{},
		model.OrderModel{},
		model.OrderItemModel{},
		model.PaymentEventModel{},
		model.OutboxEventModel{},
	}

	g := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	g.ApplyBasic(models...)

	g.Execute()
}
