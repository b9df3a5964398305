package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		orders, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		ticketTypes, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")
		collection.Fields.Add(
			// No cascade: tickets are the admission audit trail.
			&core.RelationField{
				Name:         "order",
				Required:     true,
				MaxSelect:    1,
				CollectionId: orders.Id,
			},
			&core.RelationField{
				Name:         "ticket_type",
				Required:     true,
				MaxSelect:    1,
				CollectionId: ticketTypes.Id,
			},
			&core.TextField{
				Name: "holder_name",
				Max:  200,
			},
			&core.TextField{
				Name:     "unique_code",
				Required: true,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"valid", "used", "cancelled"},
			},
			&core.DateField{
				Name: "used_at",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		collection.AddIndex("idx_tickets_unique_code", true, "unique_code", "")
		collection.AddIndex("idx_tickets_order", false, "`order`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
