package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("orders")
		collection.Fields.Add(
			&core.RelationField{
				Name:         "event",
				Required:     true,
				MaxSelect:    1,
				CollectionId: events.Id,
			},
			&core.RelationField{
				Name:         "voter",
				MaxSelect:    1,
				CollectionId: users.Id,
			},
			&core.NumberField{
				Name: "total_amount",
				Min:  types.Pointer(0.0),
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"pending", "paid", "failed"},
			},
			&core.TextField{
				Name: "transaction_id",
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

		collection.AddIndex("idx_orders_voter", false, "voter", "")
		collection.AddIndex("idx_orders_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
